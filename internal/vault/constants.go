// =============================
// File: internal/vault/constants.go
// =============================
package vault

import (
	"github.com/gagliardetto/solana-go"
)

// PDA seeds used by the on-chain program.
const (
	VaultSeed = "vault"
	UserSeed  = "user"
)

// Account sizes as allocated on chain: 8 discriminator bytes plus the
// reserved payload.
const (
	VaultAccountSpace = 8 + 200
	VaultUserSpace    = 8 + 64
)

const LamportsPerSol = 1_000_000_000

// MeteoraDLMMProgramID is the mainnet DLMM pool program the vault routes
// invested SOL into.
var MeteoraDLMMProgramID = solana.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")

// Instruction discriminators: sha256("global:<name>")[0:8].
var (
	InitializeVaultDiscriminator  = []byte{0x30, 0xbf, 0xa3, 0x2c, 0x47, 0x81, 0x3f, 0xa4}
	DepositDiscriminator          = []byte{0xf2, 0x23, 0xc6, 0x89, 0x52, 0xe1, 0xf2, 0xb6}
	InvestDiscriminator           = []byte{0x0d, 0xf5, 0xb4, 0x67, 0xfe, 0xb6, 0x79, 0x04}
	FinalizeStrategyDiscriminator = []byte{0x86, 0x06, 0xc5, 0xe5, 0xe7, 0xbd, 0x97, 0x44}
	WithdrawDiscriminator         = []byte{0xb7, 0x12, 0x46, 0x9c, 0x94, 0x6d, 0xa1, 0x22}
)

// Account discriminators: sha256("account:<Name>")[0:8].
var (
	VaultAccountDiscriminator = []byte{0xe6, 0xfb, 0xf1, 0x53, 0x8b, 0xca, 0x5d, 0x1c}
	VaultUserDiscriminator    = []byte{0xe2, 0xa0, 0x16, 0x91, 0x5a, 0x97, 0x7a, 0xe2}
)
