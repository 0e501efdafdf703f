// internal/history/models.go
package history

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// BaseModel replaces gorm.Model so the column set stays explicit.
type BaseModel struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CreatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"`
}

// Operation is one vault instruction that reached the chain and its outcome.
// Preflight failures never get a signature and are not recorded.
type Operation struct {
	BaseModel
	Signature     string     `gorm:"unique;not null;type:varchar(88)" json:"signature"`
	Action        string     `gorm:"index;not null;type:varchar(32)" json:"action"`
	WalletName    string     `gorm:"type:varchar(100)" json:"wallet_name,omitempty"`
	WalletAddress string     `gorm:"index;not null;type:varchar(44)" json:"wallet_address"`
	Vault         string     `gorm:"index;not null;type:varchar(44)" json:"vault"`
	Lamports      uint64     `gorm:"not null;default:0" json:"lamports"`
	Shares        uint64     `gorm:"not null;default:0" json:"shares"`
	Status        string     `gorm:"not null;type:varchar(20)" json:"status"`
	ErrorMessage  string     `gorm:"type:text" json:"error_message,omitempty"`
	ExecutionTime float64    `gorm:"type:decimal(10,3)" json:"execution_time,omitempty"`
	ConfirmedAt   *time.Time `gorm:"index" json:"confirmed_at,omitempty"`
}

// Operation status values.
const (
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// Vault actions as they appear in the action column.
const (
	ActionInitialize = "initialize"
	ActionDeposit    = "deposit"
	ActionInvest     = "invest"
	ActionFinalize   = "finalize"
	ActionWithdraw   = "withdraw"
)

// BeforeCreate normalizes the record before it is inserted.
func (o *Operation) BeforeCreate(_ *gorm.DB) error {
	if o.Signature == "" {
		return fmt.Errorf("operation record requires a signature")
	}
	o.Action = strings.ToLower(strings.TrimSpace(o.Action))
	if o.Action == "" {
		return fmt.Errorf("operation record requires an action")
	}
	return nil
}

// ToCSV converts the record to a CSV row.
func (o *Operation) ToCSV() []string {
	confirmed := ""
	if o.ConfirmedAt != nil {
		confirmed = o.ConfirmedAt.Format(time.RFC3339)
	}
	return []string{
		fmt.Sprintf("%d", o.ID),
		o.CreatedAt.Format(time.RFC3339),
		o.Signature,
		o.Action,
		o.WalletName,
		o.WalletAddress,
		o.Vault,
		fmt.Sprintf("%d", o.Lamports),
		fmt.Sprintf("%d", o.Shares),
		o.Status,
		o.ErrorMessage,
		formatSeconds(o.ExecutionTime),
		confirmed,
	}
}

// CSVHeaders returns the header row for operation CSV files.
func CSVHeaders() []string {
	return []string{
		"id",
		"created_at",
		"signature",
		"action",
		"wallet_name",
		"wallet_address",
		"vault",
		"lamports",
		"shares",
		"status",
		"error_message",
		"execution_time",
		"confirmed_at",
	}
}

func formatSeconds(s float64) string {
	if s == 0 {
		return ""
	}
	return fmt.Sprintf("%.3f", s)
}
