// =====================================
// File: cmd/vaultctl/cmd/history.go
// =====================================
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Vadim91200/dlmmvault/internal/history"
	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyWallet string
	historyVault  string
	historyAction string
	historyStatus string

	exportFormat        string
	exportOutput        string
	exportConfirmedOnly bool
	exportSince         string
	exportUntil         string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded vault operations",
	Long: `History lists operations recorded in the postgres store, newest
first. Requires postgres_url in the config; operations are recorded
whenever a mutating command or batch run confirms or fails on chain.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded operations to CSV or JSON",
	Long: `Export writes recorded operations to a timestamped file in the
output directory. Date filters take YYYY-MM-DD.`,
	Args: cobra.NoArgs,
	RunE: runHistoryExport,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyWallet, "wallet", "", "filter by wallet address")
	historyCmd.PersistentFlags().StringVar(&historyVault, "vault", "", "filter by vault address")
	historyCmd.PersistentFlags().StringVar(&historyAction, "action", "", "filter by action (deposit/withdraw/invest/finalize/initialize)")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "filter by status (confirmed/failed)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows to list (0 for all)")

	historyExportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv or json")
	historyExportCmd.Flags().StringVar(&exportOutput, "output", "exports", "output directory")
	historyExportCmd.Flags().BoolVar(&exportConfirmedOnly, "confirmed-only", false, "export only confirmed operations")
	historyExportCmd.Flags().StringVar(&exportSince, "since", "", "include operations created on or after this date (YYYY-MM-DD)")
	historyExportCmd.Flags().StringVar(&exportUntil, "until", "", "include operations created through this date (YYYY-MM-DD)")

	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ops, err := a.store.ListOperations(ctx, history.Filter{
		WalletAddress: historyWallet,
		Vault:         historyVault,
		Action:        historyAction,
		Status:        historyStatus,
		Limit:         historyLimit,
	})
	if err != nil {
		return fmt.Errorf("list operations: %w", err)
	}

	if len(ops) == 0 {
		fmt.Println("No operations recorded")
		return nil
	}

	fmt.Printf("%d operations\n", len(ops))
	for _, op := range ops {
		line := fmt.Sprintf("%s  %-10s  %-9s",
			op.CreatedAt.Format("2006-01-02 15:04:05"), op.Action, op.Status)
		if op.Lamports > 0 {
			line += fmt.Sprintf("  %s SOL", vault.SolString(op.Lamports))
		}
		if op.Shares > 0 {
			line += fmt.Sprintf("  %d shares", op.Shares)
		}
		fmt.Printf("%s  %s\n", line, op.Signature)
		if op.ErrorMessage != "" {
			fmt.Printf("    error: %s\n", op.ErrorMessage)
		}
	}
	return nil
}

func runHistoryExport(_ *cobra.Command, _ []string) error {
	var format history.ExportFormat
	switch exportFormat {
	case "csv":
		format = history.FormatCSV
	case "json":
		format = history.FormatJSON
	default:
		return fmt.Errorf("invalid --format %q: want csv or json", exportFormat)
	}

	startTime, err := parseDateFlag(exportSince, "--since")
	if err != nil {
		return err
	}
	endTime, err := parseDateFlag(exportUntil, "--until")
	if err != nil {
		return err
	}
	if !endTime.IsZero() {
		// Cover the whole named day.
		endTime = endTime.AddDate(0, 0, 1)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	ops, err := a.store.ListOperations(ctx, history.Filter{
		WalletAddress: historyWallet,
		Vault:         historyVault,
		Action:        historyAction,
	})
	if err != nil {
		return fmt.Errorf("list operations: %w", err)
	}

	path, err := history.NewExporter(a.log.Logger).Export(ops, history.ExportOptions{
		Format:        format,
		StartTime:     startTime,
		EndTime:       endTime,
		WalletFilter:  historyWallet,
		VaultFilter:   historyVault,
		ActionFilter:  historyAction,
		OnlyConfirmed: exportConfirmedOnly,
		OutputDir:     exportOutput,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", path)
	return nil
}

func parseDateFlag(raw, flag string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: want YYYY-MM-DD", flag, raw)
	}
	return t, nil
}
