package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// TradeRow is one recorded trade in the history list.
type TradeRow struct {
	Symbol    string
	Route     string
	Status    string
	NetProfit decimal.Decimal
	Size      decimal.Decimal
	Manual    bool
	At        string
}

// TradesComponent renders recent trade history.
type TradesComponent struct {
	rows    []TradeRow
	maxRows int
}

// NewTradesComponent creates a trades component.
func NewTradesComponent(maxRows int) *TradesComponent {
	return &TradesComponent{maxRows: maxRows}
}

// Set replaces the displayed trades, newest first.
func (t *TradesComponent) Set(rows []TradeRow) {
	if len(rows) > t.maxRows {
		rows = rows[:t.maxRows]
	}
	t.rows = rows
}

// View renders the component.
func (t *TradesComponent) View() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	win := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	loss := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	warn := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	out := header.Render(fmt.Sprintf("TRADES (last %d)", t.maxRows)) + "\n"
	if len(t.rows) == 0 {
		return out + muted.Render("no trades recorded yet")
	}

	for _, row := range t.rows {
		profitStyle := win
		if row.NetProfit.IsNegative() || row.Status != "completed" {
			profitStyle = loss
		}
		line := fmt.Sprintf("%-8s %-22s %-10s %10s %10s  %s",
			row.Symbol,
			row.Route,
			row.Status,
			profitStyle.Render("$"+row.NetProfit.StringFixed(2)),
			"$"+row.Size.StringFixed(0),
			muted.Render(row.At),
		)
		if row.Manual {
			line += " " + warn.Render("! funds stranded")
		}
		out += line + "\n"
	}
	return out
}
