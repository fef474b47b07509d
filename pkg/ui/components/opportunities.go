// Package components provides reusable dashboard components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// OpportunityRow is one scanned spread in the list.
type OpportunityRow struct {
	Symbol     string
	BuyOn      string
	SellOn     string
	SpreadPct  decimal.Decimal
	NetProfit  decimal.Decimal
	Size       decimal.Decimal
	FlashLoan  bool
	ObservedAt string
}

// OpportunitiesComponent renders the latest scan results.
type OpportunitiesComponent struct {
	rows []OpportunityRow
}

// NewOpportunitiesComponent creates an opportunities component.
func NewOpportunitiesComponent() *OpportunitiesComponent {
	return &OpportunitiesComponent{}
}

// Set replaces the rows with the latest scan.
func (o *OpportunitiesComponent) Set(rows []OpportunityRow) {
	o.rows = rows
}

// View renders the component.
func (o *OpportunitiesComponent) View() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	profit := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	out := header.Render("OPPORTUNITIES") + "\n"
	if len(o.rows) == 0 {
		return out + muted.Render("no profitable spreads in the last scan")
	}

	out += fmt.Sprintf("%-8s %-22s %8s %10s %10s %-5s %s\n",
		"Token", "Route", "Spread", "Profit", "Size", "Loan", "Seen")
	for _, row := range o.rows {
		loan := "-"
		if row.FlashLoan {
			loan = "flash"
		}
		out += fmt.Sprintf("%-8s %-22s %7.2f%% %10s %10s %-5s %s\n",
			row.Symbol,
			row.BuyOn+" -> "+row.SellOn,
			row.SpreadPct.InexactFloat64(),
			profit.Render("$"+row.NetProfit.StringFixed(2)),
			"$"+row.Size.StringFixed(0),
			loan,
			muted.Render(row.ObservedAt),
		)
	}
	return out
}
