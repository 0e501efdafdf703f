// ===================================
// File: cmd/vaultctl/cmd/watch.go
// ===================================
package cmd

import (
	"time"

	"github.com/Vadim91200/dlmmvault/internal/monitor"
	"github.com/Vadim91200/dlmmvault/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of a vault's state",
	Long: `Watch opens a terminal dashboard that polls the vault on an interval
and streams operation events: balances, share price, position count
and the most recent confirmations and failures.

Keys: r refresh, q quit.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", monitor.DefaultInterval, "poll interval for vault state")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
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

	feed := ui.NewFeed(a.bus)
	defer feed.Close()

	watcher := monitor.NewVaultWatcher(a.vault, a.bus, vaultAddr, watchInterval, a.log.Logger)
	go watcher.Start()
	defer watcher.Stop()

	// Manual refresh runs off the UI goroutine so a slow RPC never
	// freezes the dashboard.
	onRefresh := func() { go watcher.Refresh() }

	recovery := ui.NewRecoveryHandler(a.log.Logger, func() (tea.Model, []tea.ProgramOption) {
		return ui.NewWatchModel(vaultAddr.String(), feed, onRefresh),
			[]tea.ProgramOption{tea.WithAltScreen()}
	})
	return recovery.RunWithRecovery()
}
