// ===================================
// File: cmd/vaultctl/cmd/batch.go
// ===================================
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Vadim91200/dlmmvault/internal/task"
	"github.com/Vadim91200/dlmmvault/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	batchTasksFile   string
	batchWalletsFile string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run vault operations from a CSV task file",
	Long: `Batch loads tasks from a CSV file and executes them concurrently
across the wallets in the wallet file. Tasks reference wallets by
name; invalid rows are skipped with a log line. The worker count
comes from the config file.

Task CSV columns:
  task_name,wallet_name,operation,amount_sol,shares,vault_admin,pool_address,priority_fee_sol,compute_units`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchTasksFile, "tasks", "configs/tasks.csv", "path to the task CSV file")
	batchCmd.Flags().StringVar(&batchWalletsFile, "wallets", "configs/wallets.csv", "path to the wallet CSV file")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.connect(); err != nil {
		return err
	}

	wallets, err := wallet.LoadWallets(batchWalletsFile)
	if err != nil {
		return fmt.Errorf("load wallets: %w", err)
	}

	tasks, err := task.NewManager(a.log.Logger).LoadTasks(batchTasksFile)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := task.NewRunner(a.chain, wallets, a.vaultCfg, a.cfg.Workers, a.bus, a.log.Logger)
	if err := runner.Run(ctx, tasks); err != nil {
		return err
	}

	fmt.Printf("Executed %d tasks with %d wallets\n", len(tasks), len(wallets))
	return nil
}
