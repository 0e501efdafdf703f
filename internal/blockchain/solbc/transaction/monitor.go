// internal/blockchain/solbc/transaction/monitor.go
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/Vadim91200/dlmmvault/internal/blockchain"
)

type Monitor struct {
	client blockchain.Client
	logger *zap.Logger
	config Config
}

func NewMonitor(client blockchain.Client, logger *zap.Logger, config Config) *Monitor {
	if config.MinConfirmations == 0 {
		config.MinConfirmations = 1
	}
	if config.ConfirmationTime == 0 {
		config.ConfirmationTime = 60 * time.Second
	}
	return &Monitor{
		client: client,
		logger: logger.Named("tx-monitor"),
		config: config,
	}
}

// checkConfirmation reports whether the signature reached the required
// confirmation depth.
func (m *Monitor) checkConfirmation(ctx context.Context, signature solana.Signature) (bool, error) {
	response, err := m.client.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return false, fmt.Errorf("failed to get signature status: %w", err)
	}

	if len(response.Value) == 0 || response.Value[0] == nil {
		return false, nil
	}

	status := response.Value[0]

	if status.Confirmations != nil && *status.Confirmations >= uint64(m.config.MinConfirmations) {
		return true, nil
	}

	return status.ConfirmationStatus == rpc.ConfirmationStatusFinalized, nil
}

// GetTransactionStatus returns the current observed state of a signature.
func (m *Monitor) GetTransactionStatus(ctx context.Context, signature solana.Signature) (*Status, error) {
	response, err := m.client.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction status: %w", err)
	}

	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return &Status{
			Signature: signature.String(),
			Status:    StatusPending,
			Timestamp: time.Now(),
		}, nil
	}

	status := response.Value[0]
	txStatus := &Status{
		Signature: signature.String(),
		Timestamp: time.Now(),
		Slot:      status.Slot,
	}

	if status.Confirmations != nil {
		txStatus.Confirmations = *status.Confirmations
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		txStatus.Status = StatusFinalized
	case rpc.ConfirmationStatusConfirmed:
		txStatus.Status = StatusConfirmed
	default:
		txStatus.Status = StatusPending
	}

	if status.Err != nil {
		txStatus.Error = fmt.Sprintf("%v", status.Err)
		txStatus.Status = StatusFailed
	}

	return txStatus, nil
}

// AwaitConfirmation polls until the signature confirms, fails on chain, or
// the configured window closes.
func (m *Monitor) AwaitConfirmation(ctx context.Context, signature solana.Signature) (*Status, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	deadline := time.After(m.config.ConfirmationTime)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, ErrConfirmationTimeout
		case <-ticker.C:
			confirmed, err := m.checkConfirmation(ctx, signature)
			if err != nil {
				m.logger.Warn("Confirmation check failed", zap.Error(err))
				continue
			}

			if confirmed {
				return m.GetTransactionStatus(ctx, signature)
			}

			// Surface on-chain rejection early instead of waiting out
			// the deadline.
			status, err := m.GetTransactionStatus(ctx, signature)
			if err == nil && status.Status == StatusFailed {
				return status, nil
			}
		}
	}
}
