package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
)

// BudgetsModel shows how much of each budget has been used in the period
// containing the reference date. Left and right move the date by one month.
type BudgetsModel struct {
	Frame
	session Session

	table    table.Model
	progress []budget.Progress
	ref      time.Time

	loading bool
	err     error
}

func NewBudgetsModel(session Session) BudgetsModel {
	columns := []table.Column{
		{Title: "Category", Width: 20},
		{Title: "Period", Width: 8},
		{Title: "Window", Width: 23},
		{Title: "Limit", Width: 10},
		{Title: "Spent", Width: 10},
		{Title: "Available", Width: 10},
		{Title: "Used", Width: 7},
		{Title: "Status", Width: 8},
	}

	return BudgetsModel{
		session: session,
		table:   newTable(columns),
		ref:     time.Now(),
		loading: true,
	}
}

// newTable builds a focused table in the shared style.
func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m BudgetsModel) Title() string { return "Budget Progress" }

func (m BudgetsModel) ShortHelp() string {
	return "Esc: back | ←/→: month | t: today | r: refresh"
}

func (m BudgetsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadProgressMsg:
		m.loading = false
		m.err = msg.err
		m.progress = msg.progress
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.Frame = Frame{Width: msg.Width, Height: msg.Height}
		m.table.SetHeight(m.Frame.TableHeight(10))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "left":
			m.ref = m.ref.AddDate(0, -1, 0)
			return m.reload()
		case "right":
			m.ref = m.ref.AddDate(0, 1, 0)
			return m.reload()
		case "t":
			m.ref = time.Now()
			return m.reload()
		case "r":
			return m.reload()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BudgetsModel) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	return m, m.loadCmd()
}

func (m *BudgetsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.progress))

	for _, p := range m.progress {
		rows = append(rows, table.Row{
			p.Budget.CategoryName,
			string(p.Budget.Period),
			fmt.Sprintf("%s..%s", FormatDate(p.WindowStart), FormatDate(p.WindowEnd)),
			FormatAmount(p.Budget.AmountLimit),
			FormatAmount(p.Spent),
			FormatAmount(p.Available),
			p.Percentage.StringFixed(1) + "%",
			string(p.Status),
		})
	}

	m.table.SetRows(rows)
}

func (m BudgetsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading budgets...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(dangerStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Reference date: %s", activeStyle(FormatDate(m.ref)))

	if len(m.progress) == 0 {
		return lipgloss.NewStyle().Padding(1).Render(header + "\n\nNo budgets yet.")
	}

	var exceeded int

	for _, p := range m.progress {
		if p.Exceeded {
			exceeded++
		}
	}

	footer := faintStyle.Render(fmt.Sprintf("%d budgets", len(m.progress)))
	if exceeded > 0 {
		footer = dangerStyle.Render(fmt.Sprintf("%d of %d budgets exceeded", exceeded, len(m.progress)))
	}

	if idx := m.table.Cursor(); idx >= 0 && idx < len(m.progress) {
		footer += "  " + FormatProgressStatus(m.progress[idx].Status)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			tableView,
			footer,
		),
	)
}

type loadProgressMsg struct {
	progress []budget.Progress
	err      error
}

func (m BudgetsModel) loadCmd() tea.Cmd {
	ref := m.ref

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		progress, err := m.session.Budgets.Progress(ctx, m.session.Actor, budget.ListFilter{}, ref)

		return loadProgressMsg{progress: progress, err: err}
	}
}
