package ui

import (
	"time"
)

// Tea message types for the watch screen.

// SnapshotMsg carries a fresh vault state poll result.
type SnapshotMsg struct {
	Vault          string
	TotalSol       uint64
	TotalShares    uint64
	InvestedAmount uint64
	SharePrice     float64
	UserCount      int
	At             time.Time
}

// ActivityMsg is one line of the operation feed.
type ActivityMsg struct {
	Operation string
	Wallet    string
	Signature string
	Err       string
	At        time.Time
}

// Failed reports whether the activity line is a failure.
func (m ActivityMsg) Failed() bool {
	return m.Err != ""
}
