// ===================================
// File: cmd/vaultctl/cmd/users.go
// ===================================
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List position accounts under the vault program",
	Long: `Users lists every position account the program owns, then shows the
configured wallet's own position in the target vault if one exists.`,
	Args: cobra.NoArgs,
	RunE: runUsers,
}

func init() {
	rootCmd.AddCommand(usersCmd)
}

func runUsers(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.connect(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	positions, err := a.vault.ListUserAccounts(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%d position accounts under program %s\n", len(positions), a.vault.ProgramID().String())
	for _, p := range positions {
		fmt.Printf("  %s  shares=%d\n", p.Address.String(), p.Account.Shares)
	}

	vaultAddr, err := a.targetVault()
	if err != nil {
		return err
	}

	own, err := a.vault.FetchUserPosition(ctx, vaultAddr, a.vault.Wallet().PublicKey)
	switch {
	case err == nil:
		fmt.Printf("\nYour position in %s: %d shares (%s)\n",
			vaultAddr.String(), own.Account.Shares, own.Address.String())
	case errors.Is(err, vault.ErrPositionNotFound):
		fmt.Printf("\nNo position in %s yet\n", vaultAddr.String())
	default:
		return err
	}
	return nil
}
