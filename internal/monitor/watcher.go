// =============================================
// File: internal/monitor/watcher.go
// =============================================
// Package monitor polls on-chain vault state and publishes refresh events
// for the watch screen and other subscribers.
package monitor

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/Vadim91200/dlmmvault/internal/events"
	"github.com/Vadim91200/dlmmvault/internal/vault"
)

// DefaultInterval is how often the watcher refreshes when no interval is
// configured.
const DefaultInterval = 5 * time.Second

// StatusFetcher is the slice of the vault client the watcher needs.
type StatusFetcher interface {
	VaultStatus(ctx context.Context, vaultAddress solana.PublicKey) (*vault.Status, error)
}

// VaultWatcher periodically fetches one vault's status and publishes a
// VaultUpdated event per refresh.
type VaultWatcher struct {
	client    StatusFetcher
	bus       *events.Bus
	vaultAddr solana.PublicKey
	interval  time.Duration
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewVaultWatcher creates a watcher for a single vault address.
func NewVaultWatcher(client StatusFetcher, bus *events.Bus, vaultAddr solana.PublicKey,
	interval time.Duration, logger *zap.Logger) *VaultWatcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &VaultWatcher{
		client:    client,
		bus:       bus,
		vaultAddr: vaultAddr,
		interval:  interval,
		logger:    logger.Named("watcher"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins the polling loop and blocks until Stop is called.
func (w *VaultWatcher) Start() {
	w.logger.Info("Starting vault watcher",
		zap.String("vault", w.vaultAddr.String()),
		zap.Duration("interval", w.interval))

	// Run the first refresh immediately.
	w.refresh()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh()
		case <-w.ctx.Done():
			w.logger.Debug("Vault watcher stopped")
			return
		}
	}
}

// Stop stops the polling loop.
func (w *VaultWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

// Refresh triggers an immediate poll outside the ticker cadence.
func (w *VaultWatcher) Refresh() {
	w.refresh()
}

func (w *VaultWatcher) refresh() {
	ctx, cancel := context.WithTimeout(w.ctx, 10*time.Second)
	defer cancel()

	status, err := w.client.VaultStatus(ctx, w.vaultAddr)
	if err != nil {
		w.logger.Error("Failed to fetch vault status", zap.Error(err))
		return
	}

	_ = w.bus.Publish(events.NewVaultUpdated(
		status.Address.String(),
		status.Vault.TotalSol,
		status.Vault.TotalShares,
		status.Vault.InvestedAmount,
		status.SharePriceLamports,
		status.UserCount,
	))
}
