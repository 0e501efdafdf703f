package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Vadim91200/dlmmvault/internal/ui/style"
	"github.com/Vadim91200/dlmmvault/internal/vault"
)

// StatusHeader is the top banner of the watch screen: vault address,
// share price and total value.
type StatusHeader struct {
	vault       string
	sharePrice  float64
	totalValue  uint64
	lastRefresh time.Time
	style       StatusHeaderStyle
	width       int
}

// StatusHeaderStyle contains all styling for the status header
type StatusHeaderStyle struct {
	container lipgloss.Style
	title     lipgloss.Style
	vault     lipgloss.Style
	value     lipgloss.Style
	stale     lipgloss.Style
}

// NewStatusHeader creates a new status header component
func NewStatusHeader() *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		vault: "not loaded",
		style: StatusHeaderStyle{
			container: lipgloss.NewStyle().
				Background(palette.Background).
				Foreground(palette.Text).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(0, 2).
				MarginBottom(1),

			title: lipgloss.NewStyle().
				Foreground(palette.Primary).
				Bold(true),

			vault: lipgloss.NewStyle().
				Foreground(palette.TextSecondary),

			value: lipgloss.NewStyle().
				Foreground(palette.Success).
				Bold(true),

			stale: lipgloss.NewStyle().
				Foreground(palette.TextMuted),
		},
	}
}

// SetVault updates the vault address display
func (sh *StatusHeader) SetVault(address string) {
	if len(address) > 12 {
		sh.vault = address[:12] + "..."
	} else {
		sh.vault = address
	}
}

// SetSnapshot updates the share price and total value display.
func (sh *StatusHeader) SetSnapshot(sharePrice float64, totalValue uint64, at time.Time) {
	sh.sharePrice = sharePrice
	sh.totalValue = totalValue
	sh.lastRefresh = at
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
	sh.style.container = sh.style.container.Width(width - 4)
}

// View renders the status header
func (sh *StatusHeader) View() string {
	title := sh.style.title.Render("dlmmvault watch")
	vaultAddr := sh.style.vault.Render(fmt.Sprintf("Vault: %s", sh.vault))
	value := sh.style.value.Render(fmt.Sprintf("Value: %s SOL", vault.SolString(sh.totalValue)))
	price := sh.style.value.Render(fmt.Sprintf("Share: %.4f lamports", sh.sharePrice))

	refresh := "waiting for first refresh"
	if !sh.lastRefresh.IsZero() {
		refresh = fmt.Sprintf("updated %s", sh.lastRefresh.Format("15:04:05"))
	}

	content := lipgloss.JoinHorizontal(
		lipgloss.Left,
		title,
		" | ",
		vaultAddr,
		" | ",
		value,
		" | ",
		price,
		" | ",
		sh.style.stale.Render(refresh),
	)

	return sh.style.container.Render(content)
}

// GetHeight returns the component height for layout calculations
func (sh *StatusHeader) GetHeight() int {
	return 3 // Border + padding + content
}
