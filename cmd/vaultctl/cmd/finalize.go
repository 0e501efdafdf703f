// ======================================
// File: cmd/vaultctl/cmd/finalize.go
// ======================================
package cmd

import (
	"context"

	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/spf13/cobra"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Return invested funds to the vault's liquid balance",
	Long: `Finalize closes the current strategy and moves the invested amount
back into the vault's liquid balance, making it available for
withdrawals. Only the vault admin can finalize.`,
	Args: cobra.NoArgs,
	RunE: runFinalize,
}

func init() {
	rootCmd.AddCommand(finalizeCmd)
}

func runFinalize(_ *cobra.Command, _ []string) error {
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

	return runOperation(a, "finalize", vaultAddr, 0, 0,
		func(ctx context.Context) (*vault.OpResult, error) {
			return a.vault.FinalizeStrategy(ctx, vaultAddr)
		})
}
