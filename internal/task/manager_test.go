// =============================================
// File: internal/task/manager_test.go
// =============================================
package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTasksCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTasks(t *testing.T) {
	manager := NewManager(zap.NewNop())
	pool := solana.NewWallet().PublicKey().String()

	content := "task_name,wallet,operation,amount_sol,shares,vault_admin,pool_address,priority_fee_sol,compute_units\n" +
		"deposit-1,main,deposit,1.5,\n" +
		"withdraw-1,second,withdraw,,250\n" +
		"invest-1,main,invest,0.75,,," + pool + ",0.0005,400000\n" +
		"bad-op,main,stake,1,\n" +
		"short-row,main\n" +
		"bad-amount,main,deposit,abc,\n"

	tasks, err := manager.LoadTasks(writeTasksCSV(t, content))
	require.NoError(t, err)
	require.Len(t, tasks, 3, "invalid rows are skipped, not fatal")

	deposit := tasks[0]
	assert.Equal(t, "deposit-1", deposit.TaskName)
	assert.Equal(t, "main", deposit.WalletName)
	assert.Equal(t, OperationDeposit, deposit.Operation)
	assert.Equal(t, uint64(1_500_000_000), deposit.Lamports())

	withdraw := tasks[1]
	assert.Equal(t, OperationWithdraw, withdraw.Operation)
	assert.Equal(t, uint64(250), withdraw.Shares)
	assert.Zero(t, withdraw.AmountSol)

	invest := tasks[2]
	assert.Equal(t, OperationInvest, invest.Operation)
	assert.Equal(t, pool, invest.PoolAddress)
	assert.Equal(t, "0.0005", invest.PriorityFeeSol)
	assert.Equal(t, uint32(400_000), invest.ComputeUnits)
}

func TestLoadTasksHeaderOnly(t *testing.T) {
	manager := NewManager(zap.NewNop())
	path := writeTasksCSV(t, "task_name,wallet,operation,amount_sol,shares\n")

	_, err := manager.LoadTasks(path)
	assert.ErrorContains(t, err, "no tasks found")
}

func TestLoadTasksAllInvalid(t *testing.T) {
	manager := NewManager(zap.NewNop())
	path := writeTasksCSV(t, "task_name,wallet,operation,amount_sol,shares\n,,deposit,1,\n")

	_, err := manager.LoadTasks(path)
	assert.ErrorContains(t, err, "no valid tasks loaded")
}

func TestLoadTasksMissingFile(t *testing.T) {
	manager := NewManager(zap.NewNop())

	_, err := manager.LoadTasks(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
