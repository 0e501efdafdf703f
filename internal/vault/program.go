// =============================
// File: internal/vault/program.go
// =============================
package vault

import (
	"github.com/gagliardetto/solana-go"
)

// DeriveVaultAddress returns the vault PDA for an admin. One vault exists
// per admin key.
func DeriveVaultAddress(programID, admin solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			[]byte(VaultSeed),
			admin.Bytes(),
		},
		programID,
	)
}

// DeriveUserAddress returns the per-user position PDA inside a vault.
func DeriveUserAddress(programID, user, vaultAddress solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			[]byte(UserSeed),
			user.Bytes(),
			vaultAddress.Bytes(),
		},
		programID,
	)
}
