package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
	listStateDelete
)

type listFields struct {
	Description string
	Amount      string
	Override    bool
	Delete      bool
}

type ListModel struct {
	Frame
	session Session

	state listState
	table table.Model
	txs   []*transaction.Transaction
	form  *huh.Form

	typeFilterIdx int
	rangeIdx      int

	filter  transaction.ListFilter
	fields  *listFields
	loading bool
	err     error
	status  string
}

func NewListModel(session Session) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 12},
		{Title: "Category", Width: 18},
		{Title: "Description", Width: 40},
	}

	return ListModel{
		session: session,
		table:   newTable(columns),
		filter:  transaction.ListFilter{},
		loading: true,
	}
}

func (m ListModel) Title() string { return "Transactions List" }
func (m ListModel) ShortHelp() string {
	if m.state != listStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | x: delete | t: type filter | d: date filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = dangerStyle.Render(fmt.Sprintf("Error saving: %v", msg.err))
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.Frame = Frame{Width: msg.Width, Height: msg.Height}
		m.table.SetHeight(m.Frame.TableHeight(10))
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit, listStateDelete:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			return m.enterDeleteMode()
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % 3
			m.applyFilter(time.Now())

			return m, m.loadTxsCmd()
		case "d":
			m.rangeIdx = (m.rangeIdx + 1) % len(listRanges)
			m.applyFilter(time.Now())

			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) current() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	tx := m.current()
	if tx == nil {
		return m, nil
	}

	m.fields = &listFields{
		Description: tx.Description,
		Amount:      FormatAmount(tx.Amount),
	}

	fields := []huh.Field{
		huh.NewInput().
			Key("description").
			Title("Description").
			Value(&m.fields.Description),

		huh.NewInput().
			Key("amount").
			Title("Amount").
			Value(&m.fields.Amount).
			Validate(func(s string) error {
				_, err := parseEntryAmount(s)
				return err
			}),
	}

	if tx.Type == transaction.TypeExpense {
		fields = append(fields, huh.NewConfirm().
			Key("override").
			Title("Save even if over budget?").
			Value(&m.fields.Override))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) enterDeleteMode() (tea.Model, tea.Cmd) {
	tx := m.current()
	if tx == nil {
		return m, nil
	}

	m.fields = &listFields{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s %s?", FormatSigned(tx), tx.Description)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.fields.Delete),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == listStateDelete {
		return m, m.deleteCmd()
	}

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [d] Date: %s",
		activeStyle(typeLabels[m.typeFilterIdx]),
		activeStyle(listRanges[m.rangeIdx].String()),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		faintStyle.Render(totals(m.txs)),
	)

	if m.state != listStateBrowse && m.form != nil {
		rawDesc := ""
		if tx := m.current(); tx != nil {
			rawDesc = tx.RawDescription
		}

		title := "Edit Transaction"
		if m.state == listStateDelete {
			title = "Delete Transaction"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(
				fmt.Sprintf("%s\n\nOriginal: %s\n\n%s", title, rawDesc, m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func totals(txs []*transaction.Transaction) string {
	income, expenses := sumByType(txs)

	return fmt.Sprintf("%d transactions | income %s | expenses %s | net %s",
		len(txs), FormatAmount(income), FormatAmount(expenses), FormatAmount(income.Sub(expenses)))
}

var (
	typeLabels = []string{"All", "Expenses", "Income"}
	listRanges = []Timeframe{TimeframeAll, TimeframeThisMonth, TimeframeLastMonth, TimeframeThisYear}
)

func (m *ListModel) applyFilter(now time.Time) {
	switch m.typeFilterIdx {
	case 1:
		m.filter.Type = new(transaction.TypeExpense)
	case 2:
		m.filter.Type = new(transaction.TypeIncome)
	default:
		m.filter.Type = nil
	}

	tf := listRanges[m.rangeIdx]
	if tf == TimeframeAll {
		m.filter = TimeframeSelectedMsg{All: true}.Filter(m.filter)
		return
	}

	start, end := tf.Range(now)
	m.filter = TimeframeSelectedMsg{Start: start, End: end}.Filter(m.filter)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			FormatSigned(tx),
			tx.CategoryName,
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.session.Transactions.List(ctx, m.session.Actor, filter)

		return loadListMsg{txs: txs, err: err}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) saveCmd() tea.Cmd {
	tx := m.current()
	if tx == nil {
		return nil
	}

	f := *m.fields

	return func() tea.Msg {
		amount, err := parseEntryAmount(f.Amount)
		if err != nil {
			return listSaveMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		_, d, err := m.session.Transactions.Update(ctx, m.session.Actor, tx.ID, transaction.UpdateParams{
			Description:       &f.Description,
			Amount:            &amount,
			ConfirmOverBudget: f.Override,
		})

		var blocked *transaction.BlockedError
		if errors.As(err, &blocked) {
			return listSaveMsg{status: FormatDecision(blocked.Decision)}
		}

		if err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: FormatDecision(d)}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	tx := m.current()
	if tx == nil || !m.fields.Delete {
		return func() tea.Msg { return listSaveMsg{} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.session.Transactions.Delete(ctx, m.session.Actor, tx.ID); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: okStyle.Render("Deleted.")}
	}
}
