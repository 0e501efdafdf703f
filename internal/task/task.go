// =============================================
// File: internal/task/task.go
// =============================================
// Package task loads vault operations from CSV batch files and runs them
// across a worker pool.
package task

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/Vadim91200/dlmmvault/internal/config"
	"github.com/Vadim91200/dlmmvault/internal/vault"
)

// OperationType defines the supported operation types
type OperationType string

const (
	OperationInitialize OperationType = "initialize"
	OperationDeposit    OperationType = "deposit"
	OperationWithdraw   OperationType = "withdraw"
	OperationInvest     OperationType = "invest"
	OperationFinalize   OperationType = "finalize"
)

// Task represents a vault operation from CSV configuration
type Task struct {
	TaskName       string
	WalletName     string
	Operation      OperationType
	AmountSol      float64 // deposit/invest amount in SOL
	Shares         uint64  // withdraw share count
	VaultAdmin     string  // vault owner; empty means the task wallet owns it
	PoolAddress    string  // DLMM pool for invest
	PriorityFeeSol string  // per-task priority fee override (SOL string)
	ComputeUnits   uint32  // per-task compute unit override
}

// Lamports converts the task's SOL amount to lamports.
func (t *Task) Lamports() uint64 {
	return uint64(math.Round(t.AmountSol * vault.LamportsPerSol))
}

// AdminKey resolves the vault admin, defaulting to the task's own wallet.
func (t *Task) AdminKey(walletKey solana.PublicKey) (solana.PublicKey, error) {
	if t.VaultAdmin == "" {
		return walletKey, nil
	}
	admin, err := solana.PublicKeyFromBase58(t.VaultAdmin)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid vault_admin %q: %w", t.VaultAdmin, err)
	}
	return admin, nil
}

// Validate checks if the task has valid parameters
func (t *Task) Validate() error {
	if t.TaskName == "" {
		return fmt.Errorf("task name cannot be empty")
	}

	if t.WalletName == "" {
		return fmt.Errorf("wallet name cannot be empty")
	}

	switch t.Operation {
	case OperationInitialize:
		if t.VaultAdmin != "" {
			return fmt.Errorf("initialize always creates the task wallet's own vault")
		}
	case OperationFinalize:
		// No arguments beyond the wallet.
	case OperationDeposit:
		if t.AmountSol <= 0 {
			return fmt.Errorf("deposit requires amount_sol greater than zero")
		}
	case OperationWithdraw:
		if t.Shares == 0 {
			return fmt.Errorf("withdraw requires shares greater than zero")
		}
	case OperationInvest:
		if t.AmountSol <= 0 {
			return fmt.Errorf("invest requires amount_sol greater than zero")
		}
		if _, err := solana.PublicKeyFromBase58(t.PoolAddress); err != nil {
			return fmt.Errorf("invest requires a valid pool_address: %w", err)
		}
	default:
		return fmt.Errorf("invalid operation: %s", t.Operation)
	}

	if t.VaultAdmin != "" {
		if _, err := solana.PublicKeyFromBase58(t.VaultAdmin); err != nil {
			return fmt.Errorf("invalid vault_admin: %w", err)
		}
	}

	if t.ComputeUnits > config.MaxComputeUnits {
		return fmt.Errorf("compute_units cannot exceed %d", config.MaxComputeUnits)
	}

	return nil
}
