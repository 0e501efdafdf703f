// internal/events/bus_test.go
package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPublishSyncDelivers(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	var got atomic.Int64
	bus.SubscribeFunc(OperationConfirmed, func(_ context.Context, e Event) error {
		if e.Type() != OperationConfirmed {
			t.Errorf("unexpected event type %s", e.Type())
		}
		got.Add(1)
		return nil
	})

	event := NewOperationConfirmed("deposit", "main", "wallet", "vault", "sig", 1_000, 500, time.Second)
	if err := bus.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("PublishSync failed: %v", err)
	}

	if got.Load() != 1 {
		t.Errorf("expected 1 delivery, got %d", got.Load())
	}
}

func TestPublishAsyncDelivers(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	delivered := make(chan Event, 1)
	bus.SubscribeFunc(VaultUpdated, func(_ context.Context, e Event) error {
		delivered <- e
		return nil
	})

	snapshot := VaultUpdatedEvent{
		BaseEvent:   BaseEvent{EventType: VaultUpdated, EventTime: time.Now()},
		Vault:       "vault",
		TotalSol:    2_000,
		TotalShares: 1_000,
		SharePrice:  2.0,
	}
	if err := bus.Publish(snapshot); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case e := <-delivered:
		update, ok := e.(VaultUpdatedEvent)
		if !ok {
			t.Fatalf("unexpected event payload %T", e)
		}
		if update.SharePrice != 2.0 {
			t.Errorf("expected share price 2.0, got %f", update.SharePrice)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	var got atomic.Int64
	sub := bus.SubscribeFunc(OperationFailed, func(_ context.Context, _ Event) error {
		got.Add(1)
		return nil
	})
	sub.Unsubscribe()

	event := NewOperationFailed("withdraw", "main", "wallet", "vault", "", context.DeadlineExceeded)
	if err := bus.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("PublishSync failed: %v", err)
	}

	if got.Load() != 0 {
		t.Errorf("expected no deliveries after unsubscribe, got %d", got.Load())
	}
}

func TestPublishAfterShutdown(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	if err := bus.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	event := NewOperationSubmitted("deposit", "main", "wallet", "vault", 1, 0)
	if err := bus.Publish(event); err == nil {
		t.Error("expected publish on a stopped bus to fail")
	}
}
