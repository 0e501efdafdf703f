// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/Vadim91200/dlmmvault/internal/blockchain"
	rpcpool "github.com/Vadim91200/dlmmvault/internal/blockchain/solbc/rpc"
)

// Client is a thin adapter over solana-go, routed through a node pool so a
// single flaky endpoint does not take the whole process down.
type Client struct {
	pool       *rpcpool.Pool
	commitment rpc.CommitmentType
	logger     *zap.Logger
}

var (
	ErrAccountNotFound = errors.New("account not found")
)

// IsAccountNotFoundError reports whether the error means the account does
// not exist at the queried commitment.
func IsAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// NewClient builds a client over the given endpoints. The commitment level
// is used for reads; submissions carry their own options.
func NewClient(urls []string, commitment rpc.CommitmentType, logger *zap.Logger) (*Client, error) {
	pool, err := rpcpool.NewPool(urls, logger)
	if err != nil {
		return nil, err
	}
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Client{
		pool:       pool,
		commitment: commitment,
		logger:     logger.Named("solbc-client"),
	}, nil
}

// Close stops the pool's health monitoring.
func (c *Client) Close() {
	c.pool.Close()
}

// PoolMetrics exposes the underlying pool metrics snapshot.
func (c *Client) PoolMetrics() *rpcpool.PoolMetrics {
	return c.pool.GetMetrics()
}

// GetRecentBlockhash returns the latest finalized blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	var blockhash solana.Hash
	err := c.pool.ExecuteWithRetry(ctx, func(node *rpcpool.NodeClient) error {
		result, err := node.Client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		if err != nil {
			return rpcpool.NewError(err, node.URL, "getLatestBlockhash")
		}
		blockhash = result.Value.Blockhash
		return nil
	})
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return blockhash, nil
}

// SendTransaction submits a signed transaction with default options.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return c.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
		SkipPreflight:       false,
		PreflightCommitment: c.commitment,
	})
}

// SendTransactionWithOpts submits a signed transaction with explicit
// preflight options.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	var sig solana.Signature
	err := c.pool.ExecuteWithRetry(ctx, func(node *rpcpool.NodeClient) error {
		var err error
		sig, err = node.Client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			SkipPreflight:       opts.SkipPreflight,
			PreflightCommitment: opts.PreflightCommitment,
		})
		return err
	})
	if err != nil {
		c.logger.Error("SendTransaction error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// SimulateTransaction dry-runs the transaction and returns program logs.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error) {
	var result *rpc.SimulateTransactionResponse
	err := c.pool.ExecuteWithRetry(ctx, func(node *rpcpool.NodeClient) error {
		var err error
		result, err = node.Client.SimulateTransaction(ctx, tx)
		return err
	})
	if err != nil {
		c.logger.Error("SimulateTransaction error", zap.Error(err))
		return nil, err
	}
	units := uint64(0)
	if result.Value.UnitsConsumed != nil {
		units = *result.Value.UnitsConsumed
	}
	return &blockchain.SimulationResult{
		Err:           result.Value.Err,
		Logs:          result.Value.Logs,
		UnitsConsumed: units,
	}, nil
}

// GetAccountInfo fetches a single account as base64 at the client
// commitment. A missing account surfaces as ErrAccountNotFound.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	var result *rpc.GetAccountInfoResult
	err := c.pool.ExecuteWithRetry(ctx, func(node *rpcpool.NodeClient) error {
		var err error
		result, err = node.Client.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: c.commitment,
		})
		if err != nil {
			// solana-go reports missing accounts as an error string.
			if strings.Contains(strings.ToLower(err.Error()), "not found") {
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey.String())
	}
	return result, nil
}

// GetMultipleAccounts fetches a batch of accounts in a single request.
func (c *Client) GetMultipleAccounts(ctx context.Context, pubkeys []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	if len(pubkeys) == 0 {
		return &rpc.GetMultipleAccountsResult{}, nil
	}

	opts := rpc.GetMultipleAccountsOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	}

	var result *rpc.GetMultipleAccountsResult
	err := c.pool.ExecuteWithRetry(ctx, func(node *rpcpool.NodeClient) error {
		var err error
		result, err = node.Client.GetMultipleAccountsWithOpts(ctx, pubkeys, &opts)
		return err
	})
	if err != nil {
		c.logger.Debug("GetMultipleAccounts error", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// GetProgramAccounts lists accounts owned by the program whose data starts
// with the given discriminator. Only the keys are returned; fetch contents
// with GetMultipleAccounts.
func (c *Client) GetProgramAccounts(ctx context.Context, programID solana.PublicKey, discriminator []byte) (rpc.GetProgramAccountsResult, error) {
	opts := rpc.GetProgramAccountsOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	}

	if len(discriminator) > 0 {
		offset := uint64(0)
		length := uint64(len(discriminator))
		opts.DataSlice = &rpc.DataSlice{
			Offset: &offset,
			Length: &length,
		}
		opts.Filters = append(opts.Filters,
			rpc.RPCFilter{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: 0,
					Bytes:  discriminator,
				},
			},
		)
	}

	var accounts rpc.GetProgramAccountsResult
	err := c.pool.ExecuteWithRetry(ctx, func(node *rpcpool.NodeClient) error {
		var err error
		accounts, err = node.Client.GetProgramAccountsWithOpts(ctx, programID, &opts)
		return err
	})
	if err != nil {
		c.logger.Debug("GetProgramAccounts error",
			zap.String("program_id", programID.String()),
			zap.Error(err))
		return nil, err
	}
	return accounts, nil
}

// GetSignatureStatuses reports confirmation state for the signatures.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	var result *rpc.GetSignatureStatusesResult
	err := c.pool.ExecuteWithRetry(ctx, func(node *rpcpool.NodeClient) error {
		var err error
		result, err = node.Client.GetSignatureStatuses(ctx, false, signatures...)
		return err
	})
	if err != nil {
		c.logger.Error("GetSignatureStatuses error", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// GetBalance returns the lamport balance of an account.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	var balance uint64
	err := c.pool.ExecuteWithRetry(ctx, func(node *rpcpool.NodeClient) error {
		result, err := node.Client.GetBalance(ctx, pubkey, commitment)
		if err != nil {
			return err
		}
		balance = result.Value
		return nil
	})
	if err != nil {
		c.logger.Error("GetBalance error", zap.Error(err))
		return 0, err
	}
	return balance, nil
}

// WaitForTransactionConfirmation polls signature status until the requested
// commitment is reached or the 30s window closes. The transaction manager
// has a configurable variant; this is the simple path for one-shot calls.
func (c *Client) WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(30 * time.Second)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("confirmation timeout")
		case <-ticker.C:
			statuses, err := c.GetSignatureStatuses(ctx, signature)
			if err != nil {
				c.logger.Warn("Error getting signature statuses", zap.Error(err))
				continue
			}
			if statuses != nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
				status := statuses.Value[0]
				if status.Err != nil {
					return fmt.Errorf("transaction failed on chain: %v", status.Err)
				}
				if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
					return nil
				}
				if commitment != rpc.CommitmentFinalized &&
					status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed {
					return nil
				}
			}
		}
	}
}

var _ blockchain.Client = (*Client)(nil)
