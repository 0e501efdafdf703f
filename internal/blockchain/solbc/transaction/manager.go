// internal/blockchain/solbc/transaction/manager.go
package transaction

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/Vadim91200/dlmmvault/internal/blockchain"
	rpcpool "github.com/Vadim91200/dlmmvault/internal/blockchain/solbc/rpc"
)

// sendWindow bounds how long a submission may be retried before the
// blockhash grows too old to be worth resending.
const sendWindow = 15 * time.Second

type Manager struct {
	client    blockchain.Client
	logger    *zap.Logger
	config    Config
	validator *Validator
	monitor   *Monitor
	metrics   *Metrics
}

func NewManager(client blockchain.Client, logger *zap.Logger, config Config) *Manager {
	return &Manager{
		client:    client,
		logger:    logger.Named("tx-manager"),
		config:    config,
		validator: NewValidator(logger),
		monitor:   NewMonitor(client, logger, config),
		metrics:   NewMetrics(),
	}
}

// Monitor exposes the confirmation monitor for status-only queries.
func (tm *Manager) Monitor() *Monitor {
	return tm.monitor
}

// SendAndConfirm validates, submits and awaits confirmation for a signed
// transaction.
func (tm *Manager) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (*Status, error) {
	defer tm.metrics.TrackTransaction(time.Now())

	if err := tm.validator.ValidateTransaction(tx); err != nil {
		tm.logger.Error("Transaction validation failed", zap.Error(err))
		return nil, err
	}

	signature, err := tm.sendWithRetry(ctx, tx)
	if err != nil {
		tm.logger.Error("Failed to send transaction", zap.Error(err))
		return nil, err
	}

	status, err := tm.monitor.AwaitConfirmation(ctx, signature)
	if err != nil {
		tm.logger.Error("Transaction confirmation failed",
			zap.String("signature", signature.String()),
			zap.Error(err))
		return nil, err
	}

	return status, nil
}

func (tm *Manager) sendWithRetry(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	op := func() (solana.Signature, error) {
		sig, err := tm.client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
			SkipPreflight:       tm.config.SkipPreflight,
			PreflightCommitment: tm.config.Commitment,
		})
		if err != nil {
			tm.metrics.failureCounter.Inc()
			if !rpcpool.IsRetryableError(err) {
				return solana.Signature{}, backoff.Permanent(err)
			}
			tm.logger.Warn("Retrying transaction send", zap.Error(err))
			return solana.Signature{}, err
		}
		tm.metrics.successCounter.Inc()
		return sig, nil
	}

	return backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(sendWindow),
	)
}
