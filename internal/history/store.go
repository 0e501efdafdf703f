// internal/history/store.go
package history

import "context"

// Store persists vault operation records.
type Store interface {
	// Records
	SaveOperation(ctx context.Context, op *Operation) error
	GetOperation(ctx context.Context, signature string) (*Operation, error)
	ListOperations(ctx context.Context, filter Filter) ([]*Operation, error)
	UpdateOperationStatus(ctx context.Context, signature string, status string, errorMsg string) error

	// Migrations
	RunMigrations() error
}

// Filter narrows ListOperations. Empty string fields match everything.
type Filter struct {
	WalletAddress string
	Vault         string
	Action        string
	Status        string
	Limit         int
	Offset        int
}
