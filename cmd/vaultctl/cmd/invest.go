// ====================================
// File: cmd/vaultctl/cmd/invest.go
// ====================================
package cmd

import (
	"context"
	"fmt"

	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var investPool string

var investCmd = &cobra.Command{
	Use:   "invest <amount-sol>",
	Short: "Route liquid vault SOL into a Meteora pool",
	Long: `Invest moves part of the vault's liquid balance into the given
Meteora DLMM pool. Only the vault admin can invest, and the amount
cannot exceed the liquid balance.

Example:
  vaultctl invest 0.75 --pool 5rCf1DM8LjKTw4YqhnoLcngyZYeNnQqztScTogYHAS6`,
	Args: cobra.ExactArgs(1),
	RunE: runInvest,
}

func init() {
	investCmd.Flags().StringVar(&investPool, "pool", "", "Meteora DLMM pool address (required)")
	_ = investCmd.MarkFlagRequired("pool")
	rootCmd.AddCommand(investCmd)
}

func runInvest(_ *cobra.Command, args []string) error {
	lamports, err := parseSolAmount(args[0])
	if err != nil {
		return err
	}
	poolAddr, err := solana.PublicKeyFromBase58(investPool)
	if err != nil {
		return fmt.Errorf("invalid --pool %q: %w", investPool, err)
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

	return runOperation(a, "invest", vaultAddr, lamports, 0,
		func(ctx context.Context) (*vault.OpResult, error) {
			return a.vault.Invest(ctx, vaultAddr, poolAddr, lamports)
		})
}
