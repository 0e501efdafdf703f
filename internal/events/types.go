// internal/events/types.go
package events

import (
	"time"
)

// EventType identifies a class of events on the bus.
type EventType string

const (
	// Vault operation lifecycle.
	OperationSubmitted EventType = "operation.submitted"
	OperationConfirmed EventType = "operation.confirmed"
	OperationFailed    EventType = "operation.failed"

	// Vault state refreshes, consumed by the watch screen.
	VaultUpdated EventType = "vault.updated"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// OperationSubmittedEvent is emitted when an instruction is signed and
// handed to the RPC layer.
type OperationSubmittedEvent struct {
	BaseEvent
	Operation  string
	WalletName string
	Wallet     string
	Vault      string
	Lamports   uint64
	Shares     uint64
}

// OperationConfirmedEvent is emitted when the transaction reaches the
// requested commitment.
type OperationConfirmedEvent struct {
	BaseEvent
	Operation  string
	WalletName string
	Wallet     string
	Vault      string
	Signature  string
	Lamports   uint64
	Shares     uint64
	Duration   time.Duration
}

// OperationFailedEvent is emitted when a preflight check, submission or
// confirmation fails. Signature is empty when the operation never reached
// the RPC node.
type OperationFailedEvent struct {
	BaseEvent
	Operation  string
	WalletName string
	Wallet     string
	Vault      string
	Signature  string
	Error      error
}

// VaultUpdatedEvent carries a fresh vault snapshot.
type VaultUpdatedEvent struct {
	BaseEvent
	Vault          string
	TotalSol       uint64
	TotalShares    uint64
	InvestedAmount uint64
	SharePrice     float64
	UserCount      int
}

// NewOperationSubmitted builds a submitted event stamped now.
func NewOperationSubmitted(operation, walletName, walletAddr, vault string, lamports, shares uint64) OperationSubmittedEvent {
	return OperationSubmittedEvent{
		BaseEvent:  BaseEvent{EventType: OperationSubmitted, EventTime: time.Now()},
		Operation:  operation,
		WalletName: walletName,
		Wallet:     walletAddr,
		Vault:      vault,
		Lamports:   lamports,
		Shares:     shares,
	}
}

// NewOperationConfirmed builds a confirmed event stamped now.
func NewOperationConfirmed(operation, walletName, walletAddr, vault, signature string, lamports, shares uint64, duration time.Duration) OperationConfirmedEvent {
	return OperationConfirmedEvent{
		BaseEvent:  BaseEvent{EventType: OperationConfirmed, EventTime: time.Now()},
		Operation:  operation,
		WalletName: walletName,
		Wallet:     walletAddr,
		Vault:      vault,
		Signature:  signature,
		Lamports:   lamports,
		Shares:     shares,
		Duration:   duration,
	}
}

// NewOperationFailed builds a failed event stamped now.
func NewOperationFailed(operation, walletName, walletAddr, vault, signature string, err error) OperationFailedEvent {
	return OperationFailedEvent{
		BaseEvent:  BaseEvent{EventType: OperationFailed, EventTime: time.Now()},
		Operation:  operation,
		WalletName: walletName,
		Wallet:     walletAddr,
		Vault:      vault,
		Signature:  signature,
		Error:      err,
	}
}

// NewVaultUpdated builds a vault snapshot event stamped now.
func NewVaultUpdated(vault string, totalSol, totalShares, investedAmount uint64, sharePrice float64, userCount int) VaultUpdatedEvent {
	return VaultUpdatedEvent{
		BaseEvent:      BaseEvent{EventType: VaultUpdated, EventTime: time.Now()},
		Vault:          vault,
		TotalSol:       totalSol,
		TotalShares:    totalShares,
		InvestedAmount: investedAmount,
		SharePrice:     sharePrice,
		UserCount:      userCount,
	}
}
