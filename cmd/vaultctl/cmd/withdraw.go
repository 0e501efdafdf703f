// ======================================
// File: cmd/vaultctl/cmd/withdraw.go
// ======================================
package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/spf13/cobra"
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <shares>",
	Short: "Burn shares and withdraw SOL from a vault",
	Long: `Withdraw burns the given number of shares from the wallet's position
and pays out lamports at the current share price. Only the vault's
liquid balance is available; invested funds must be finalized first.`,
	Args: cobra.ExactArgs(1),
	RunE: runWithdraw,
}

func init() {
	rootCmd.AddCommand(withdrawCmd)
}

func runWithdraw(_ *cobra.Command, args []string) error {
	shares, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid share count %q", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.connect(); err != nil {
		return err
	}

	vaultAddr, err := a.targetVault()
	if err != nil {
		return err
	}

	return runOperation(a, "withdraw", vaultAddr, 0, shares,
		func(ctx context.Context) (*vault.OpResult, error) {
			return a.vault.Withdraw(ctx, vaultAddr, shares)
		})
}
