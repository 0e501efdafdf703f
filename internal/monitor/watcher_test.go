// =============================================
// File: internal/monitor/watcher_test.go
// =============================================
package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vadim91200/dlmmvault/internal/events"
	"github.com/Vadim91200/dlmmvault/internal/vault"
)

type stubFetcher struct {
	status *vault.Status
	err    error
	calls  atomic.Int32
}

func (s *stubFetcher) VaultStatus(_ context.Context, _ solana.PublicKey) (*vault.Status, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.status, nil
}

func newWatcherBus(t *testing.T) *events.Bus {
	t.Helper()
	bus := events.NewBus(zap.NewNop(), 16)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Shutdown(ctx)
	})
	return bus
}

func TestVaultWatcherPublishesSnapshots(t *testing.T) {
	vaultAddr := solana.NewWallet().PublicKey()
	fetcher := &stubFetcher{
		status: &vault.Status{
			Address: vaultAddr,
			Vault: vault.VaultAccount{
				TotalSol:       2_000_000_000,
				TotalShares:    1_000_000_000,
				InvestedAmount: 500_000_000,
			},
			SharePriceLamports: 2.0,
			PDABalance:         2_500_000_000,
			UserCount:          3,
		},
	}
	bus := newWatcherBus(t)

	updates := make(chan events.VaultUpdatedEvent, 8)
	bus.SubscribeFunc(events.VaultUpdated, func(_ context.Context, e events.Event) error {
		updates <- e.(events.VaultUpdatedEvent)
		return nil
	})

	watcher := NewVaultWatcher(fetcher, bus, vaultAddr, 20*time.Millisecond, zap.NewNop())
	go watcher.Start()
	defer watcher.Stop()

	// First refresh fires immediately, then the ticker takes over.
	for i := 0; i < 2; i++ {
		select {
		case ev := <-updates:
			assert.Equal(t, vaultAddr.String(), ev.Vault)
			assert.Equal(t, uint64(2_000_000_000), ev.TotalSol)
			assert.Equal(t, uint64(1_000_000_000), ev.TotalShares)
			assert.Equal(t, uint64(500_000_000), ev.InvestedAmount)
			assert.Equal(t, 2.0, ev.SharePrice)
			assert.Equal(t, 3, ev.UserCount)
		case <-time.After(2 * time.Second):
			t.Fatalf("snapshot %d never arrived", i+1)
		}
	}

	require.GreaterOrEqual(t, fetcher.calls.Load(), int32(2))
}

func TestVaultWatcherKeepsPollingAfterErrors(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("rpc unavailable")}
	bus := newWatcherBus(t)

	watcher := NewVaultWatcher(fetcher, bus, solana.NewWallet().PublicKey(), 10*time.Millisecond, zap.NewNop())
	go watcher.Start()
	defer watcher.Stop()

	assert.Eventually(t, func() bool {
		return fetcher.calls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond, "failed refreshes must not stop the loop")
}

func TestVaultWatcherDefaultInterval(t *testing.T) {
	watcher := NewVaultWatcher(&stubFetcher{}, newWatcherBus(t), solana.NewWallet().PublicKey(), 0, zap.NewNop())
	assert.Equal(t, DefaultInterval, watcher.interval)
}

func TestVaultWatcherStopBeforeStart(t *testing.T) {
	watcher := NewVaultWatcher(&stubFetcher{}, newWatcherBus(t), solana.NewWallet().PublicKey(), time.Second, zap.NewNop())
	watcher.Stop()

	done := make(chan struct{})
	go func() {
		watcher.Start()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}
