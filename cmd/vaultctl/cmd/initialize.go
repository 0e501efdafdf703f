// ========================================
// File: cmd/vaultctl/cmd/initialize.go
// ========================================
package cmd

import (
	"context"
	"fmt"

	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/spf13/cobra"
)

var initializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Create the configured wallet's vault",
	Long: `Initialize creates the vault account owned by the configured wallet.
Position accounts are created lazily on first deposit. The command
fails if the vault already exists.`,
	Args: cobra.NoArgs,
	RunE: runInitialize,
}

func init() {
	rootCmd.AddCommand(initializeCmd)
}

func runInitialize(_ *cobra.Command, _ []string) error {
	if vaultAdmin != "" {
		return fmt.Errorf("initialize always creates the configured wallet's own vault; drop --vault-admin")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.connect(); err != nil {
		return err
	}

	vaultAddr, _, err := a.vault.VaultAddress(a.vault.Wallet().PublicKey)
	if err != nil {
		return fmt.Errorf("derive vault address: %w", err)
	}

	return runOperation(a, "initialize", vaultAddr, 0, 0,
		func(ctx context.Context) (*vault.OpResult, error) {
			return a.vault.InitializeVault(ctx)
		})
}
