// =============================================
// File: internal/task/runner.go
// =============================================
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Vadim91200/dlmmvault/internal/blockchain"
	"github.com/Vadim91200/dlmmvault/internal/events"
	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/Vadim91200/dlmmvault/internal/wallet"
)

// Runner fans batch tasks out to a worker pool. Each task gets its own
// vault client so per-task fee overrides and wallets stay isolated.
type Runner struct {
	logger     *zap.Logger
	client     blockchain.Client
	wallets    map[string]*wallet.Wallet
	bus        *events.Bus
	baseConfig *vault.Config
	workers    int
}

// NewRunner creates a batch runner.
func NewRunner(
	client blockchain.Client,
	wallets map[string]*wallet.Wallet,
	baseConfig *vault.Config,
	workers int,
	bus *events.Bus,
	logger *zap.Logger,
) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		logger:     logger.Named("runner"),
		client:     client,
		wallets:    wallets,
		bus:        bus,
		baseConfig: baseConfig,
		workers:    workers,
	}
}

// Run executes all tasks and returns when the pool drains or the context
// is cancelled. Individual task failures are published as events, not
// returned.
func (r *Runner) Run(ctx context.Context, tasks []*Task) error {
	if len(tasks) == 0 {
		return fmt.Errorf("no tasks to run")
	}

	taskCh := make(chan *Task, len(tasks))
	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)

	r.logger.Info("Starting execution",
		zap.Int("tasks", len(tasks)),
		zap.Int("workers", r.workers))

	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < r.workers; i++ {
		id := i + 1
		g.Go(func() error {
			return r.worker(gCtx, id, taskCh)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	r.logger.Info("All workers finished")
	return nil
}

func (r *Runner) worker(ctx context.Context, id int, tasks <-chan *Task) error {
	logger := r.logger.With(zap.Int("worker_id", id))
	logger.Info("Worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker shutting down due to context cancellation")
			return ctx.Err()
		case t, ok := <-tasks:
			if !ok {
				logger.Info("Task channel closed")
				return nil
			}
			r.handleTask(ctx, t, logger)
		}
	}
}

func (r *Runner) handleTask(ctx context.Context, t *Task, logger *zap.Logger) {
	w := r.wallets[t.WalletName]
	if w == nil {
		logger.Warn("Skipping task - no wallet found", zap.String("wallet", t.WalletName))
		return
	}

	client, err := vault.NewClient(r.client, w, logger, t.clientConfig(r.baseConfig))
	if err != nil {
		logger.Error("Vault client init error", zap.String("task", t.TaskName), zap.Error(err))
		return
	}

	admin, err := t.AdminKey(w.PublicKey)
	if err != nil {
		logger.Error("Invalid vault admin", zap.String("task", t.TaskName), zap.Error(err))
		return
	}
	vaultAddr, _, err := client.VaultAddress(admin)
	if err != nil {
		logger.Error("Vault address derivation failed", zap.String("task", t.TaskName), zap.Error(err))
		return
	}

	logger.Info("Executing task",
		zap.String("task", t.TaskName),
		zap.String("operation", string(t.Operation)),
		zap.String("wallet", t.WalletName),
		zap.String("vault", vaultAddr.String()))

	_ = r.bus.Publish(events.NewOperationSubmitted(
		string(t.Operation), t.WalletName, w.PublicKey.String(), vaultAddr.String(),
		t.Lamports(), t.Shares))

	start := time.Now()
	result, err := r.execute(ctx, client, t, vaultAddr)
	if err != nil {
		logger.Error("Task execution failed",
			zap.String("task", t.TaskName),
			zap.Error(err))
		signature := ""
		if result != nil {
			signature = result.Signature
		}
		_ = r.bus.Publish(events.NewOperationFailed(
			string(t.Operation), t.WalletName, w.PublicKey.String(), vaultAddr.String(),
			signature, err))
		return
	}

	logger.Info("Task executed successfully",
		zap.String("task", t.TaskName),
		zap.String("signature", result.Signature))

	_ = r.bus.Publish(events.NewOperationConfirmed(
		string(t.Operation), t.WalletName, w.PublicKey.String(), vaultAddr.String(),
		result.Signature, t.Lamports(), t.Shares, time.Since(start)))
}

func (r *Runner) execute(ctx context.Context, client *vault.Client, t *Task, vaultAddr solana.PublicKey) (*vault.OpResult, error) {
	switch t.Operation {
	case OperationInitialize:
		return client.InitializeVault(ctx)
	case OperationDeposit:
		return client.Deposit(ctx, vaultAddr, t.Lamports())
	case OperationWithdraw:
		return client.Withdraw(ctx, vaultAddr, t.Shares)
	case OperationInvest:
		pool, err := solana.PublicKeyFromBase58(t.PoolAddress)
		if err != nil {
			return nil, fmt.Errorf("invalid pool_address: %w", err)
		}
		return client.Invest(ctx, vaultAddr, pool, t.Lamports())
	case OperationFinalize:
		return client.FinalizeStrategy(ctx, vaultAddr)
	}
	return nil, fmt.Errorf("unknown operation %q", t.Operation)
}

// clientConfig copies the base client config and applies the task's fee
// overrides.
func (t *Task) clientConfig(base *vault.Config) *vault.Config {
	cfg := *base
	if t.ComputeUnits > 0 {
		cfg.ComputeUnits = t.ComputeUnits
	}
	if t.PriorityFeeSol != "" {
		cfg.PriorityFeeSol = t.PriorityFeeSol
	}
	return &cfg
}
