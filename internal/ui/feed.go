package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Vadim91200/dlmmvault/internal/events"
)

// Feed bridges the event bus into bubbletea messages. A full buffer
// drops the message rather than blocking the bus.
type Feed struct {
	ch   chan tea.Msg
	subs []events.Subscription
}

// NewFeed subscribes to vault snapshots and operation results on the bus.
func NewFeed(bus *events.Bus) *Feed {
	f := &Feed{ch: make(chan tea.Msg, 256)}

	f.subs = append(f.subs,
		bus.SubscribeFunc(events.VaultUpdated, f.onVaultUpdated),
		bus.SubscribeFunc(events.OperationConfirmed, f.onOperationConfirmed),
		bus.SubscribeFunc(events.OperationFailed, f.onOperationFailed),
	)
	return f
}

// Listen returns a tea.Cmd that waits for the next bus message.
func (f *Feed) Listen() tea.Cmd {
	return func() tea.Msg {
		return <-f.ch
	}
}

// Close detaches the feed from the bus.
func (f *Feed) Close() {
	for _, sub := range f.subs {
		sub.Unsubscribe()
	}
	f.subs = nil
}

func (f *Feed) onVaultUpdated(_ context.Context, e events.Event) error {
	ev, ok := e.(events.VaultUpdatedEvent)
	if !ok {
		return nil
	}
	f.push(SnapshotMsg{
		Vault:          ev.Vault,
		TotalSol:       ev.TotalSol,
		TotalShares:    ev.TotalShares,
		InvestedAmount: ev.InvestedAmount,
		SharePrice:     ev.SharePrice,
		UserCount:      ev.UserCount,
		At:             ev.Timestamp(),
	})
	return nil
}

func (f *Feed) onOperationConfirmed(_ context.Context, e events.Event) error {
	ev, ok := e.(events.OperationConfirmedEvent)
	if !ok {
		return nil
	}
	f.push(ActivityMsg{
		Operation: ev.Operation,
		Wallet:    ev.WalletName,
		Signature: ev.Signature,
		At:        ev.Timestamp(),
	})
	return nil
}

func (f *Feed) onOperationFailed(_ context.Context, e events.Event) error {
	ev, ok := e.(events.OperationFailedEvent)
	if !ok {
		return nil
	}
	msg := ActivityMsg{
		Operation: ev.Operation,
		Wallet:    ev.WalletName,
		Signature: ev.Signature,
		At:        ev.Timestamp(),
	}
	if ev.Error != nil {
		msg.Err = ev.Error.Error()
	} else {
		msg.Err = "unknown error"
	}
	f.push(msg)
	return nil
}

func (f *Feed) push(msg tea.Msg) {
	select {
	case f.ch <- msg:
	default:
		// Feed is full, drop the message
	}
}
