// =============================
// File: internal/vault/instructions_test.go
// =============================
package vault

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anchorDiscriminator(namespace, name string) []byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	return sum[:8]
}

// The pinned discriminator constants must equal what the Anchor runtime
// derives from the instruction and account names.
func TestDiscriminators(t *testing.T) {
	tests := []struct {
		namespace string
		name      string
		want      []byte
	}{
		{"global", "initialize_vault", InitializeVaultDiscriminator},
		{"global", "deposit", DepositDiscriminator},
		{"global", "invest", InvestDiscriminator},
		{"global", "finalize_strategy", FinalizeStrategyDiscriminator},
		{"global", "withdraw", WithdrawDiscriminator},
		{"account", "VaultAccount", VaultAccountDiscriminator},
		{"account", "VaultUser", VaultUserDiscriminator},
	}

	for _, tt := range tests {
		t.Run(tt.namespace+":"+tt.name, func(t *testing.T) {
			assert.Equal(t, anchorDiscriminator(tt.namespace, tt.name), tt.want)
		})
	}
}

func TestBuildInitializeVaultInstruction(t *testing.T) {
	admin := solana.NewWallet().PublicKey()
	vaultAddr, _, err := DeriveVaultAddress(testProgramID, admin)
	require.NoError(t, err)

	ix := BuildInitializeVaultInstruction(testProgramID, vaultAddr, admin)

	assert.Equal(t, testProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, InitializeVaultDiscriminator, data, "no arguments beyond the discriminator")

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)

	assert.Equal(t, vaultAddr, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.False(t, accounts[0].IsSigner)

	assert.Equal(t, admin, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsSigner)
	assert.True(t, accounts[1].IsWritable, "admin pays rent for the vault")

	assert.Equal(t, solana.SystemProgramID, accounts[2].PublicKey)
	assert.False(t, accounts[2].IsSigner)
	assert.False(t, accounts[2].IsWritable)
}

func TestBuildDepositInstruction(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	vaultAddr, _, err := DeriveVaultAddress(testProgramID, solana.NewWallet().PublicKey())
	require.NoError(t, err)
	userAddr, _, err := DeriveUserAddress(testProgramID, user, vaultAddr)
	require.NoError(t, err)

	const amount = uint64(2_500_000_000)
	ix := BuildDepositInstruction(testProgramID, vaultAddr, user, userAddr, amount)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 16)
	assert.Equal(t, DepositDiscriminator, data[:8])
	assert.Equal(t, amount, binary.LittleEndian.Uint64(data[8:]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 4)
	assert.Equal(t, vaultAddr, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, user, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsSigner)
	assert.True(t, accounts[1].IsWritable, "lamports leave the user")
	assert.Equal(t, userAddr, accounts[2].PublicKey)
	assert.True(t, accounts[2].IsWritable)
	assert.False(t, accounts[2].IsSigner, "position PDA cannot sign")
	assert.Equal(t, solana.SystemProgramID, accounts[3].PublicKey, "needed for init_if_needed and the transfer")
}

func TestBuildInvestInstruction(t *testing.T) {
	admin := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()
	vaultAddr, _, err := DeriveVaultAddress(testProgramID, admin)
	require.NoError(t, err)

	const amount = uint64(750_000_000)
	ix := BuildInvestInstruction(testProgramID, vaultAddr, admin, MeteoraDLMMProgramID, pool, amount)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 48, "discriminator + pool pubkey + amount")
	assert.Equal(t, InvestDiscriminator, data[:8])
	assert.Equal(t, pool.Bytes(), data[8:40], "pool address is a borsh pubkey, raw 32 bytes")
	assert.Equal(t, amount, binary.LittleEndian.Uint64(data[40:]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, vaultAddr, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, admin, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsSigner)
	assert.False(t, accounts[1].IsWritable, "invest moves no lamports from the admin")
	assert.Equal(t, MeteoraDLMMProgramID, accounts[2].PublicKey)
}

func TestBuildFinalizeStrategyInstruction(t *testing.T) {
	admin := solana.NewWallet().PublicKey()
	vaultAddr, _, err := DeriveVaultAddress(testProgramID, admin)
	require.NoError(t, err)

	ix := BuildFinalizeStrategyInstruction(testProgramID, vaultAddr, admin, MeteoraDLMMProgramID)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, FinalizeStrategyDiscriminator, data)

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, vaultAddr, accounts[0].PublicKey)
	assert.Equal(t, admin, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsSigner)
	assert.Equal(t, MeteoraDLMMProgramID, accounts[2].PublicKey)
}

func TestBuildWithdrawInstruction(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	vaultAddr, _, err := DeriveVaultAddress(testProgramID, solana.NewWallet().PublicKey())
	require.NoError(t, err)
	userAddr, _, err := DeriveUserAddress(testProgramID, user, vaultAddr)
	require.NoError(t, err)

	const shares = uint64(123_456)
	ix := BuildWithdrawInstruction(testProgramID, vaultAddr, user, userAddr, shares)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 16)
	assert.Equal(t, WithdrawDiscriminator, data[:8])
	assert.Equal(t, shares, binary.LittleEndian.Uint64(data[8:]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 3, "withdraw pays via direct lamport mutation, no system program")
	assert.Equal(t, vaultAddr, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, user, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsSigner)
	assert.True(t, accounts[1].IsWritable)
	assert.Equal(t, userAddr, accounts[2].PublicKey)
	assert.True(t, accounts[2].IsWritable)
}
