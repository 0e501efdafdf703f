// =============================
// File: internal/vault/instructions.go
// =============================
package vault

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Instruction data is the 8-byte discriminator followed by borsh-encoded
// arguments; account metas must be listed in the exact order the program's
// context structs declare them.

// BuildInitializeVaultInstruction creates the vault PDA for the admin.
func BuildInitializeVaultInstruction(programID, vaultAddress, admin solana.PublicKey) solana.Instruction {
	data := make([]byte, len(InitializeVaultDiscriminator))
	copy(data, InitializeVaultDiscriminator)

	accounts := []*solana.AccountMeta{
		{PublicKey: vaultAddress, IsSigner: false, IsWritable: true},
		{PublicKey: admin, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(programID, accounts, data)
}

// BuildDepositInstruction moves lamports from the user into the vault and
// mints shares into the user's position PDA (created on first deposit).
func BuildDepositInstruction(programID, vaultAddress, user, userAddress solana.PublicKey, amount uint64) solana.Instruction {
	data := make([]byte, len(DepositDiscriminator), len(DepositDiscriminator)+8)
	copy(data, DepositDiscriminator)

	amountBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(amountBytes, amount)
	data = append(data, amountBytes...)

	accounts := []*solana.AccountMeta{
		{PublicKey: vaultAddress, IsSigner: false, IsWritable: true},
		{PublicKey: user, IsSigner: true, IsWritable: true},
		{PublicKey: userAddress, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(programID, accounts, data)
}

// BuildInvestInstruction earmarks vault SOL for a DLMM pool. Admin only.
func BuildInvestInstruction(programID, vaultAddress, admin, aggregatorProgram, poolAddress solana.PublicKey, solToInvest uint64) solana.Instruction {
	data := make([]byte, len(InvestDiscriminator), len(InvestDiscriminator)+32+8)
	copy(data, InvestDiscriminator)

	data = append(data, poolAddress.Bytes()...)

	amountBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(amountBytes, solToInvest)
	data = append(data, amountBytes...)

	accounts := []*solana.AccountMeta{
		{PublicKey: vaultAddress, IsSigner: false, IsWritable: true},
		{PublicKey: admin, IsSigner: true, IsWritable: false},
		{PublicKey: aggregatorProgram, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(programID, accounts, data)
}

// BuildFinalizeStrategyInstruction returns the invested amount to the
// liquid balance. Admin only.
func BuildFinalizeStrategyInstruction(programID, vaultAddress, admin, aggregatorProgram solana.PublicKey) solana.Instruction {
	data := make([]byte, len(FinalizeStrategyDiscriminator))
	copy(data, FinalizeStrategyDiscriminator)

	accounts := []*solana.AccountMeta{
		{PublicKey: vaultAddress, IsSigner: false, IsWritable: true},
		{PublicKey: admin, IsSigner: true, IsWritable: false},
		{PublicKey: aggregatorProgram, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(programID, accounts, data)
}

// BuildWithdrawInstruction burns shares and pays lamports from the vault
// PDA back to the user.
func BuildWithdrawInstruction(programID, vaultAddress, user, userAddress solana.PublicKey, sharesToWithdraw uint64) solana.Instruction {
	data := make([]byte, len(WithdrawDiscriminator), len(WithdrawDiscriminator)+8)
	copy(data, WithdrawDiscriminator)

	sharesBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(sharesBytes, sharesToWithdraw)
	data = append(data, sharesBytes...)

	accounts := []*solana.AccountMeta{
		{PublicKey: vaultAddress, IsSigner: false, IsWritable: true},
		{PublicKey: user, IsSigner: true, IsWritable: true},
		{PublicKey: userAddress, IsSigner: false, IsWritable: true},
	}

	return solana.NewInstruction(programID, accounts, data)
}
