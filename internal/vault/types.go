// =============================
// File: internal/vault/types.go
// =============================
package vault

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// VaultAccount is the on-chain vault state. total_sol tracks the liquid
// lamports backing shares; invested_amount tracks lamports currently
// deployed into the aggregator and excluded from the share price.
type VaultAccount struct {
	Admin          solana.PublicKey
	TotalShares    uint64
	TotalSol       uint64
	InvestedAmount uint64
	Bump           uint8
}

// VaultUser is the per-user position account. It stores only the share
// count; the owning user and vault are encoded in the PDA seeds.
type VaultUser struct {
	Shares uint64
}

// ParseVaultAccount decodes a vault account from raw account data. The
// buffer is allocated larger than the struct; trailing bytes are reserved
// and ignored.
func ParseVaultAccount(data []byte) (*VaultAccount, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("data too short for VaultAccount: %d bytes", len(data))
	}
	if !bytes.Equal(data[:8], VaultAccountDiscriminator) {
		return nil, fmt.Errorf("invalid discriminator for VaultAccount")
	}

	account := &VaultAccount{}
	if err := bin.NewBorshDecoder(data[8:]).Decode(account); err != nil {
		return nil, fmt.Errorf("failed to decode VaultAccount: %w", err)
	}
	return account, nil
}

// ParseVaultUser decodes a user position account from raw account data.
func ParseVaultUser(data []byte) (*VaultUser, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("data too short for VaultUser: %d bytes", len(data))
	}
	if !bytes.Equal(data[:8], VaultUserDiscriminator) {
		return nil, fmt.Errorf("invalid discriminator for VaultUser")
	}

	user := &VaultUser{}
	if err := bin.NewBorshDecoder(data[8:]).Decode(user); err != nil {
		return nil, fmt.Errorf("failed to decode VaultUser: %w", err)
	}
	return user, nil
}

// UserPosition pairs a position account with its address.
type UserPosition struct {
	Address solana.PublicKey
	Account VaultUser
}

// Status is a point-in-time view of a vault with derived figures.
type Status struct {
	Address solana.PublicKey
	Vault   VaultAccount

	// SharePriceLamports is lamports per share over the liquid balance,
	// zero for an empty vault.
	SharePriceLamports float64

	// PDABalance is the actual lamport balance of the vault account,
	// including rent.
	PDABalance uint64

	// UserCount is the number of position accounts under the program.
	// Positions do not reference their vault, so with several vaults
	// deployed under one program this counts positions across all of them.
	UserCount int
}

// TotalValue is the vault's liquid plus invested lamports.
func (s *Status) TotalValue() uint64 {
	return s.Vault.TotalSol + s.Vault.InvestedAmount
}

// SolString formats lamports as a SOL amount.
func SolString(lamports uint64) string {
	return fmt.Sprintf("%.9f", float64(lamports)/LamportsPerSol)
}
