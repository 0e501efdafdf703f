// internal/history/recorder.go
package history

import (
	"context"
	"fmt"

	"github.com/Vadim91200/dlmmvault/internal/events"
	"go.uber.org/zap"
)

// Recorder subscribes to operation lifecycle events and persists one
// record per signature.
type Recorder struct {
	store  Store
	logger *zap.Logger
	subs   []events.Subscription
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger.Named("history"),
	}
}

// Attach subscribes the recorder to confirmed and failed operation events.
func (r *Recorder) Attach(bus *events.Bus) {
	r.subs = append(r.subs,
		bus.SubscribeFunc(events.OperationConfirmed, r.handle),
		bus.SubscribeFunc(events.OperationFailed, r.handle),
	)
}

// Detach removes the recorder's subscriptions.
func (r *Recorder) Detach() {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}
	r.subs = nil
}

func (r *Recorder) handle(ctx context.Context, e events.Event) error {
	var op *Operation

	switch ev := e.(type) {
	case events.OperationConfirmedEvent:
		confirmedAt := ev.Timestamp()
		op = &Operation{
			Signature:     ev.Signature,
			Action:        ev.Operation,
			WalletName:    ev.WalletName,
			WalletAddress: ev.Wallet,
			Vault:         ev.Vault,
			Lamports:      ev.Lamports,
			Shares:        ev.Shares,
			Status:        StatusConfirmed,
			ExecutionTime: ev.Duration.Seconds(),
			ConfirmedAt:   &confirmedAt,
		}
	case events.OperationFailedEvent:
		if ev.Signature == "" {
			// Never reached the chain; nothing to key the record on.
			r.logger.Debug("Skipping unsent operation",
				zap.String("operation", ev.Operation),
				zap.String("wallet", ev.Wallet),
				zap.Error(ev.Error))
			return nil
		}
		op = &Operation{
			Signature:     ev.Signature,
			Action:        ev.Operation,
			WalletName:    ev.WalletName,
			WalletAddress: ev.Wallet,
			Vault:         ev.Vault,
			Status:        StatusFailed,
			ErrorMessage:  ev.Error.Error(),
		}
	default:
		return nil
	}

	if err := r.store.SaveOperation(ctx, op); err != nil {
		r.logger.Error("Failed to record operation",
			zap.String("signature", op.Signature),
			zap.String("action", op.Action),
			zap.Error(err))
		return fmt.Errorf("failed to record operation %s: %w", op.Signature, err)
	}

	r.logger.Debug("Operation recorded",
		zap.String("signature", op.Signature),
		zap.String("action", op.Action),
		zap.String("status", op.Status))

	return nil
}
