package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	arbDomain "github.com/ivoros/chainarb/business/arbitrage/domain"
	botApp "github.com/ivoros/chainarb/business/bot/app"
	"github.com/ivoros/chainarb/pkg/ui/components"
)

// Message types

// TickMsg drives the periodic refresh.
type TickMsg struct{}

// ScanDoneMsg is sent when a manual scan finishes.
type ScanDoneMsg struct {
	Found int
}

// ExecuteDoneMsg is sent when a manual execution finishes.
type ExecuteDoneMsg struct {
	Completed bool
	Err       error
}

// ResetDoneMsg is sent when a ledger reset finishes.
type ResetDoneMsg struct {
	Err error
}

// Model is the Bubble Tea model for the dashboard. All numbers shown
// come from the controller; the UI never computes trading figures.
type Model struct {
	controller *botApp.Controller
	keys       KeyMap

	opportunities *components.OpportunitiesComponent
	trades        *components.TradesComponent
	summary       *components.SummaryComponent

	width    int
	height   int
	ready    bool
	showHelp bool
	quitting bool
	flash    string
	flashAt  time.Time
}

// New creates the dashboard model.
func New(controller *botApp.Controller) Model {
	return Model{
		controller:    controller,
		keys:          DefaultKeyMap(),
		opportunities: components.NewOpportunitiesComponent(),
		trades:        components.NewTradesComponent(10),
		summary:       components.NewSummaryComponent(),
	}
}

// Init starts the refresh loop.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) scanCmd() tea.Cmd {
	return func() tea.Msg {
		found := m.controller.Scan(context.Background())
		return ScanDoneMsg{Found: len(found)}
	}
}

func (m Model) executeCmd() tea.Cmd {
	return func() tea.Msg {
		opps := m.controller.Opportunities()
		if len(opps) == 0 {
			return ExecuteDoneMsg{Err: fmt.Errorf("nothing to execute, scan first")}
		}
		exec, err := m.controller.Execute(context.Background(), opps[0])
		if err != nil {
			return ExecuteDoneMsg{Err: err}
		}
		return ExecuteDoneMsg{Completed: exec.NetProfit.IsPositive()}
	}
}

func (m Model) resetCmd() tea.Cmd {
	return func() tea.Msg {
		return ResetDoneMsg{Err: m.controller.ResetLedger(context.Background())}
	}
}

// Update handles messages and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Scan):
			m.setFlash("scanning...")
			return m, m.scanCmd()
		case key.Matches(msg, m.keys.Execute):
			m.setFlash("executing best opportunity...")
			return m, m.executeCmd()
		case key.Matches(msg, m.keys.Auto):
			if m.controller.ToggleAutoExecute() {
				m.setFlash("auto-execute ON")
			} else {
				m.setFlash("auto-execute OFF")
			}
			return m, nil
		case key.Matches(msg, m.keys.Reset):
			return m, m.resetCmd()
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		m.refresh()
		return m, tickCmd()

	case ScanDoneMsg:
		m.setFlash(fmt.Sprintf("scan finished: %d opportunities", msg.Found))
		m.refresh()

	case ExecuteDoneMsg:
		if msg.Err != nil {
			m.setFlash("execution refused: " + msg.Err.Error())
		} else if msg.Completed {
			m.setFlash("trade completed")
		} else {
			m.setFlash("trade finished, see history")
		}
		m.refresh()

	case ResetDoneMsg:
		if msg.Err != nil {
			m.setFlash("reset failed: " + msg.Err.Error())
		} else {
			m.setFlash("ledger reset")
		}
		m.refresh()
	}

	return m, nil
}

func (m *Model) setFlash(s string) {
	m.flash = s
	m.flashAt = time.Now()
}

// refresh pulls the latest snapshot out of the controller.
func (m *Model) refresh() {
	opps := m.controller.Opportunities()
	oppRows := make([]components.OpportunityRow, 0, len(opps))
	for _, opp := range opps {
		row := opportunityRow(opp)
		row.FlashLoan = m.controller.WouldBorrow(opp)
		oppRows = append(oppRows, row)
	}
	m.opportunities.Set(oppRows)

	history := m.controller.History(10, 0)
	tradeRows := make([]components.TradeRow, 0, len(history))
	for _, r := range history {
		tradeRows = append(tradeRows, components.TradeRow{
			Symbol:    r.Symbol,
			Route:     r.BuyNetwork + " -> " + r.SellNetwork,
			Status:    string(r.Status),
			NetProfit: r.NetProfit,
			Size:      r.TradeSize,
			Manual:    r.ManualIntervention,
			At:        r.Timestamp.Format("15:04:05"),
		})
	}
	m.trades.Set(tradeRows)

	summary := m.controller.Status().Summary
	m.summary.Update(components.SummaryStats{
		Balance:    summary.Balance,
		NetPnL:     summary.NetPnL,
		Trades:     summary.TotalTrades,
		Successful: summary.Successful,
		Failed:     summary.Failed,
		WinRate:    summary.WinRate,
		GasUsed:    summary.TotalGasUsed,
	})
}

func opportunityRow(opp arbDomain.Opportunity) components.OpportunityRow {
	return components.OpportunityRow{
		Symbol:     opp.Symbol,
		BuyOn:      opp.BuyNetwork,
		SellOn:     opp.SellNetwork,
		SpreadPct:  opp.SpreadPct,
		NetProfit:  opp.Analysis.NetProfit,
		Size:       opp.Analysis.RecommendedSize,
		ObservedAt: opp.Timestamp.Format("15:04:05"),
	}
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return "bye\n"
	}
	if !m.ready {
		return "loading..."
	}

	status := m.controller.Status()

	var header strings.Builder
	header.WriteString(TitleStyle.Render("chainarb"))
	header.WriteString("  ")
	if status.Busy {
		header.WriteString(WarningStyle.Render("● trading"))
	} else {
		header.WriteString(ProfitStyle.Render("● idle"))
	}
	header.WriteString("  ")
	if status.AutoExecute {
		header.WriteString(ProfitStyle.Render("auto"))
	} else {
		header.WriteString(MutedStyle.Render("manual"))
	}
	if !status.LastScanAt.IsZero() {
		header.WriteString(MutedStyle.Render(
			fmt.Sprintf("  last scan %s", status.LastScanAt.Format("15:04:05"))))
	}

	sections := []string{
		header.String(),
		BoxStyle.Render(m.summary.View()),
		BoxStyle.Render(m.opportunities.View()),
		BoxStyle.Render(m.trades.View()),
	}

	if m.flash != "" && time.Since(m.flashAt) < 5*time.Second {
		sections = append(sections, MutedStyle.Render(m.flash))
	}

	help := "s scan · e execute · a auto · r reset · q quit"
	if m.showHelp {
		help += " · ? hide help"
	}
	sections = append(sections, HelpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Run starts the dashboard and blocks until the user quits.
func Run(controller *botApp.Controller) error {
	program := tea.NewProgram(New(controller), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
