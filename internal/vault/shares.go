// =============================
// File: internal/vault/shares.go
// =============================
package vault

// Share math mirrors the on-chain program, which computes with f64 and
// truncates back to u64. Keeping the same operation order keeps client
// previews bit-identical with what the program will mint or pay out.

// SharePrice returns lamports per share over the liquid balance. An empty
// vault has price zero.
func SharePrice(totalSol, totalShares uint64) float64 {
	if totalShares == 0 {
		return 0
	}
	return float64(totalSol) / float64(totalShares)
}

// SharesForDeposit returns the shares minted for a deposit. The first
// deposit (no SOL or no shares yet) mints one share per lamport.
func SharesForDeposit(amount, totalSol, totalShares uint64) uint64 {
	if totalSol == 0 || totalShares == 0 {
		return amount
	}
	price := float64(totalSol) / float64(totalShares)
	return uint64(float64(amount) / price)
}

// LamportsForShares returns the payout for burning shares at the current
// share price.
func LamportsForShares(shares, totalSol, totalShares uint64) (uint64, error) {
	if totalShares == 0 {
		return 0, ErrNoVaultShares
	}
	price := float64(totalSol) / float64(totalShares)
	return uint64(float64(shares) * price), nil
}

// PreviewDeposit applies a deposit to a copy of the vault state and
// returns the minted shares alongside the resulting state.
func PreviewDeposit(v VaultAccount, amount uint64) (minted uint64, after VaultAccount) {
	minted = SharesForDeposit(amount, v.TotalSol, v.TotalShares)
	after = v
	after.TotalSol += amount
	after.TotalShares += minted
	return minted, after
}

// PreviewWithdraw applies a share burn to a copy of the vault state and
// returns the lamport payout alongside the resulting state.
func PreviewWithdraw(v VaultAccount, shares uint64) (payout uint64, after VaultAccount, err error) {
	payout, err = LamportsForShares(shares, v.TotalSol, v.TotalShares)
	if err != nil {
		return 0, v, err
	}
	if payout > v.TotalSol {
		return 0, v, ErrInsufficientVaultBalance
	}
	if shares > v.TotalShares {
		return 0, v, ErrInsufficientUserShares
	}
	after = v
	after.TotalSol -= payout
	after.TotalShares -= shares
	return payout, after, nil
}
