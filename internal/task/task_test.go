// =============================================
// File: internal/task/task_test.go
// =============================================
package task

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vadim91200/dlmmvault/internal/config"
	"github.com/Vadim91200/dlmmvault/internal/vault"
)

func TestTaskValidate(t *testing.T) {
	pool := solana.NewWallet().PublicKey().String()
	admin := solana.NewWallet().PublicKey().String()

	tests := []struct {
		name    string
		task    Task
		wantErr string
	}{
		{
			name: "valid deposit",
			task: Task{TaskName: "deposit-1", WalletName: "main", Operation: OperationDeposit, AmountSol: 1.5},
		},
		{
			name:    "deposit without amount",
			task:    Task{TaskName: "deposit-2", WalletName: "main", Operation: OperationDeposit},
			wantErr: "amount_sol",
		},
		{
			name:    "withdraw without shares",
			task:    Task{TaskName: "withdraw-1", WalletName: "main", Operation: OperationWithdraw},
			wantErr: "shares",
		},
		{
			name: "withdraw from someone else's vault",
			task: Task{TaskName: "withdraw-2", WalletName: "main", Operation: OperationWithdraw, Shares: 100, VaultAdmin: admin},
		},
		{
			name:    "invest without pool",
			task:    Task{TaskName: "invest-1", WalletName: "main", Operation: OperationInvest, AmountSol: 2},
			wantErr: "pool_address",
		},
		{
			name: "valid invest",
			task: Task{TaskName: "invest-2", WalletName: "main", Operation: OperationInvest, AmountSol: 2, PoolAddress: pool},
		},
		{
			name: "valid initialize",
			task: Task{TaskName: "init-1", WalletName: "main", Operation: OperationInitialize},
		},
		{
			name:    "initialize with foreign admin",
			task:    Task{TaskName: "init-2", WalletName: "main", Operation: OperationInitialize, VaultAdmin: admin},
			wantErr: "own vault",
		},
		{
			name: "valid finalize",
			task: Task{TaskName: "final-1", WalletName: "main", Operation: OperationFinalize},
		},
		{
			name:    "unknown operation",
			task:    Task{TaskName: "odd-1", WalletName: "main", Operation: "stake"},
			wantErr: "invalid operation",
		},
		{
			name:    "empty task name",
			task:    Task{WalletName: "main", Operation: OperationDeposit, AmountSol: 1},
			wantErr: "task name",
		},
		{
			name:    "empty wallet name",
			task:    Task{TaskName: "deposit-3", Operation: OperationDeposit, AmountSol: 1},
			wantErr: "wallet name",
		},
		{
			name:    "garbage vault admin",
			task:    Task{TaskName: "deposit-4", WalletName: "main", Operation: OperationDeposit, AmountSol: 1, VaultAdmin: "not-base58!"},
			wantErr: "vault_admin",
		},
		{
			name:    "compute units above runtime cap",
			task:    Task{TaskName: "deposit-5", WalletName: "main", Operation: OperationDeposit, AmountSol: 1, ComputeUnits: config.MaxComputeUnits + 1},
			wantErr: "compute_units",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTaskLamports(t *testing.T) {
	tests := []struct {
		sol  float64
		want uint64
	}{
		{0, 0},
		{1, vault.LamportsPerSol},
		{1.5, 1_500_000_000},
		{0.000000001, 1},
		{2.345678912, 2_345_678_912},
	}

	for _, tt := range tests {
		got := (&Task{AmountSol: tt.sol}).Lamports()
		assert.Equal(t, tt.want, got, "sol=%v", tt.sol)
	}
}

func TestTaskAdminKey(t *testing.T) {
	walletKey := solana.NewWallet().PublicKey()

	t.Run("defaults to the task wallet", func(t *testing.T) {
		got, err := (&Task{}).AdminKey(walletKey)
		require.NoError(t, err)
		assert.Equal(t, walletKey, got)
	})

	t.Run("explicit admin", func(t *testing.T) {
		admin := solana.NewWallet().PublicKey()
		got, err := (&Task{VaultAdmin: admin.String()}).AdminKey(walletKey)
		require.NoError(t, err)
		assert.Equal(t, admin, got)
	})

	t.Run("rejects malformed admin", func(t *testing.T) {
		_, err := (&Task{VaultAdmin: "zz"}).AdminKey(walletKey)
		assert.Error(t, err)
	})
}

func TestTaskClientConfig(t *testing.T) {
	base := &vault.Config{
		ProgramID:      solana.NewWallet().PublicKey(),
		ComputeUnits:   200_000,
		PriorityFeeSol: "0.0001",
	}

	t.Run("no overrides keeps the base", func(t *testing.T) {
		cfg := (&Task{}).clientConfig(base)
		assert.Equal(t, base.ComputeUnits, cfg.ComputeUnits)
		assert.Equal(t, base.PriorityFeeSol, cfg.PriorityFeeSol)
	})

	t.Run("task overrides win", func(t *testing.T) {
		task := &Task{ComputeUnits: 400_000, PriorityFeeSol: "0.001"}
		cfg := task.clientConfig(base)
		assert.Equal(t, uint32(400_000), cfg.ComputeUnits)
		assert.Equal(t, "0.001", cfg.PriorityFeeSol)
		assert.Equal(t, uint32(200_000), base.ComputeUnits, "base config stays untouched")
	})
}
