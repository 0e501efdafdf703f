// Package ui renders the live vault dashboard for the watch command.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Vadim91200/dlmmvault/internal/ui/component"
	"github.com/Vadim91200/dlmmvault/internal/ui/style"
	"github.com/Vadim91200/dlmmvault/internal/vault"
)

// maxActivityLines caps the operation feed shown under the stats table.
const maxActivityLines = 8

// WatchModel is the bubbletea model behind the watch command: a status
// header, a vault stats table and a feed of recent operations.
type WatchModel struct {
	width  int
	height int
	keyMap KeyMap

	header *component.StatusHeader
	stats  *component.Table

	feed      *Feed
	onRefresh func()

	snapshot *SnapshotMsg
	activity []ActivityMsg
	showHelp bool

	sectionStyle lipgloss.Style
	goodStyle    lipgloss.Style
	badStyle     lipgloss.Style
	mutedStyle   lipgloss.Style
	footerStyle  lipgloss.Style
}

// NewWatchModel creates the watch screen. onRefresh, when set, is invoked
// on the refresh key to trigger an immediate poll.
func NewWatchModel(vaultAddress string, feed *Feed, onRefresh func()) *WatchModel {
	palette := style.DefaultPalette()

	header := component.NewStatusHeader()
	header.SetVault(vaultAddress)

	stats := component.NewTable().
		AddColumn("Metric", 18, lipgloss.Left).
		AddColumn("Value", 26, lipgloss.Right).
		SetShowBorder(true)

	return &WatchModel{
		keyMap:    DefaultKeyMap(),
		header:    header,
		stats:     stats,
		feed:      feed,
		onRefresh: onRefresh,
		activity:  make([]ActivityMsg, 0, maxActivityLines),

		sectionStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			MarginTop(1),

		goodStyle: lipgloss.NewStyle().
			Foreground(palette.Success),

		badStyle: lipgloss.NewStyle().
			Foreground(palette.Error),

		mutedStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		footerStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			MarginTop(1),
	}
}

// Init starts listening for bus messages.
func (m *WatchModel) Init() tea.Cmd {
	return m.feed.Listen()
}

// Update handles screen updates.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Refresh):
			if m.onRefresh != nil {
				m.onRefresh()
			}

		case key.Matches(msg, m.keyMap.Help):
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)

	case SnapshotMsg:
		snapshot := msg
		m.snapshot = &snapshot
		m.header.SetSnapshot(snapshot.SharePrice, snapshot.TotalSol+snapshot.InvestedAmount, snapshot.At)
		m.updateStats()
		return m, m.feed.Listen()

	case ActivityMsg:
		m.activity = append(m.activity, msg)
		if len(m.activity) > maxActivityLines {
			m.activity = m.activity[len(m.activity)-maxActivityLines:]
		}
		return m, m.feed.Listen()
	}

	return m, nil
}

// View renders the dashboard.
func (m *WatchModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(m.header.View())
	content.WriteString("\n")
	content.WriteString(m.stats.View())

	content.WriteString("\n")
	content.WriteString(m.sectionStyle.Render("Recent operations"))
	content.WriteString("\n")
	content.WriteString(m.renderActivity())

	content.WriteString("\n")
	content.WriteString(m.renderFooter())

	return content.String()
}

func (m *WatchModel) updateStats() {
	if m.snapshot == nil {
		return
	}
	s := m.snapshot
	m.stats.SetRows([][]string{
		{"Liquid SOL", vault.SolString(s.TotalSol)},
		{"Invested SOL", vault.SolString(s.InvestedAmount)},
		{"Total value SOL", vault.SolString(s.TotalSol + s.InvestedAmount)},
		{"Shares minted", strconv.FormatUint(s.TotalShares, 10)},
		{"Share price", fmt.Sprintf("%.4f lamports", s.SharePrice)},
		{"Positions", strconv.Itoa(s.UserCount)},
	})
}

func (m *WatchModel) renderActivity() string {
	if len(m.activity) == 0 {
		return m.mutedStyle.Render("  no operations yet")
	}

	var lines []string
	// Newest first.
	for i := len(m.activity) - 1; i >= 0; i-- {
		entry := m.activity[i]
		stamp := m.mutedStyle.Render(entry.At.Format("15:04:05"))

		if entry.Failed() {
			lines = append(lines, fmt.Sprintf("  %s ✗ %s (%s): %s",
				stamp, entry.Operation, entry.Wallet, m.badStyle.Render(entry.Err)))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s ✓ %s (%s) %s",
			stamp, entry.Operation, entry.Wallet, m.goodStyle.Render(shortSignature(entry.Signature))))
	}
	return strings.Join(lines, "\n")
}

func (m *WatchModel) renderFooter() string {
	bindings := m.keyMap.ShortHelp()
	if m.showHelp {
		bindings = nil
		for _, group := range m.keyMap.FullHelp() {
			bindings = append(bindings, group...)
		}
	}

	var parts []string
	for _, b := range bindings {
		parts = append(parts, fmt.Sprintf("%s %s", b.Help().Key, b.Help().Desc))
	}
	return m.footerStyle.Render(strings.Join(parts, " • "))
}

func shortSignature(signature string) string {
	if len(signature) > 10 {
		return signature[:10] + "..."
	}
	return signature
}
