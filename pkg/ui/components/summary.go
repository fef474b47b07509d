package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// SummaryStats holds the ledger aggregate for display. The values are
// computed by the ledger; the component only renders them.
type SummaryStats struct {
	Balance    decimal.Decimal
	NetPnL     decimal.Decimal
	Trades     int
	Successful int
	Failed     int
	WinRate    decimal.Decimal
	GasUsed    uint64
}

// SummaryComponent renders the profit-and-loss summary.
type SummaryComponent struct {
	stats SummaryStats
}

// NewSummaryComponent creates a summary component.
func NewSummaryComponent() *SummaryComponent {
	return &SummaryComponent{}
}

// Update replaces the displayed stats.
func (s *SummaryComponent) Update(stats SummaryStats) {
	s.stats = stats
}

// View renders the component.
func (s *SummaryComponent) View() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	pnlStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	if s.stats.NetPnL.IsNegative() {
		pnlStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	}

	return header.Render("P&L") + "\n" +
		fmt.Sprintf("Balance: %s  │  Net P&L: %s  │  Trades: %s (%s won / %s lost)  │  Win rate: %s\n",
			value.Render("$"+s.stats.Balance.StringFixed(2)),
			pnlStyle.Render("$"+s.stats.NetPnL.StringFixed(2)),
			value.Render(fmt.Sprintf("%d", s.stats.Trades)),
			value.Render(fmt.Sprintf("%d", s.stats.Successful)),
			value.Render(fmt.Sprintf("%d", s.stats.Failed)),
			value.Render(s.stats.WinRate.StringFixed(1)+"%"),
		) +
		fmt.Sprintf("Gas used: %s", value.Render(fmt.Sprintf("%d", s.stats.GasUsed)))
}
