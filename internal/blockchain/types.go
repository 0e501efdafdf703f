// internal/blockchain/types.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransactionOptions controls how a transaction is submitted.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// SimulationResult is the outcome of a transaction simulation.
type SimulationResult struct {
	Err           interface{}
	Logs          []string
	UnitsConsumed uint64
}

// Client is the RPC surface the vault client is built against. The solbc
// package provides the production implementation; tests substitute mocks.
type Client interface {
	// GetRecentBlockhash returns the latest finalized blockhash.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	// SendTransaction submits a signed transaction.
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// SendTransactionWithOpts submits with explicit preflight options.
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
	// SimulateTransaction runs the transaction without submitting it.
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error)
	// GetAccountInfo fetches a single account.
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	// GetMultipleAccounts fetches a batch of accounts in one request.
	GetMultipleAccounts(ctx context.Context, pubkeys []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error)
	// GetProgramAccounts lists program accounts matching a discriminator.
	GetProgramAccounts(ctx context.Context, programID solana.PublicKey, discriminator []byte) (rpc.GetProgramAccountsResult, error)
	// GetSignatureStatuses reports confirmation state for signatures.
	GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	// GetBalance returns an account's lamport balance.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	// WaitForTransactionConfirmation blocks until the signature confirms.
	WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error
}
