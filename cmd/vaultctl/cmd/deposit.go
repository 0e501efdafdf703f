// =====================================
// File: cmd/vaultctl/cmd/deposit.go
// =====================================
package cmd

import (
	"context"

	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/spf13/cobra"
)

var depositCmd = &cobra.Command{
	Use:   "deposit <amount-sol>",
	Short: "Deposit SOL into a vault",
	Long: `Deposit transfers SOL from the configured wallet into a vault and
mints shares at the current share price. Use --vault-admin to deposit
into another admin's vault; the default target is the wallet's own.

Example:
  vaultctl deposit 1.5
  vaultctl deposit 0.25 --vault-admin 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM`,
	Args: cobra.ExactArgs(1),
	RunE: runDeposit,
}

func init() {
	rootCmd.AddCommand(depositCmd)
}

func runDeposit(_ *cobra.Command, args []string) error {
	lamports, err := parseSolAmount(args[0])
	if err != nil {
		return err
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

	return runOperation(a, "deposit", vaultAddr, lamports, 0,
		func(ctx context.Context) (*vault.OpResult, error) {
			return a.vault.Deposit(ctx, vaultAddr, lamports)
		})
}
