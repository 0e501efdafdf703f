// ====================================
// File: cmd/vaultctl/cmd/status.go
// ====================================
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a vault's balances and share price",
	Long: `Status fetches the vault account and prints its balances, share
supply and the current share price. Use --vault-admin to inspect
another admin's vault.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, err := a.vault.VaultStatus(ctx, vaultAddr)
	if err != nil {
		return err
	}

	fmt.Printf("Vault:        %s\n", status.Address.String())
	fmt.Printf("Admin:        %s\n", status.Vault.Admin.String())
	fmt.Printf("Liquid:       %s SOL\n", vault.SolString(status.Vault.TotalSol))
	fmt.Printf("Invested:     %s SOL\n", vault.SolString(status.Vault.InvestedAmount))
	fmt.Printf("Total value:  %s SOL\n", vault.SolString(status.TotalValue()))
	fmt.Printf("Shares:       %d\n", status.Vault.TotalShares)
	fmt.Printf("Share price:  %.4f lamports\n", status.SharePriceLamports)
	fmt.Printf("PDA balance:  %s SOL\n", vault.SolString(status.PDABalance))
	fmt.Printf("Positions:    %d\n", status.UserCount)
	return nil
}
