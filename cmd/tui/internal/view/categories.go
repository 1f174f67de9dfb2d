package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
)

type categoriesState int

const (
	categoriesStateBrowse categoriesState = iota
	categoriesStateConfirm
)

// CategoriesModel lists categories. Deleting previews what will happen first:
// categories that still have transactions are only deactivated.
type CategoriesModel struct {
	Frame
	session Session

	state   categoriesState
	table   table.Model
	cats    []*category.Category
	showAll bool

	pending  *category.Category
	decision category.LifecycleDecision
	confirm  *huh.Form
	answer   *bool

	loading bool
	err     error
	status  string
}

func NewCategoriesModel(session Session) CategoriesModel {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Kind", Width: 8},
		{Title: "Colour", Width: 8},
		{Title: "Active", Width: 6},
	}

	return CategoriesModel{
		session: session,
		table:   newTable(columns),
		loading: true,
	}
}

func (m CategoriesModel) Title() string { return "Categories" }

func (m CategoriesModel) ShortHelp() string {
	if m.state == categoriesStateConfirm {
		return "←/→: choose | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | d: delete | a: reactivate | i: toggle inactive | r: refresh"
}

func (m CategoriesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CategoriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCategoriesMsg:
		m.loading = false
		m.err = msg.err
		m.cats = msg.cats
		m.refreshTable()

		return m, nil

	case previewMsg:
		if msg.err != nil {
			m.status = dangerStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		return m.enterConfirm(msg.cat, msg.decision)

	case lifecycleDoneMsg:
		m.state = categoriesStateBrowse
		m.confirm = nil
		m.pending = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = dangerStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		} else {
			m.status = okStyle.Render(msg.status)
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Frame = Frame{Width: msg.Width, Height: msg.Height}
		m.table.SetHeight(m.Frame.TableHeight(12))
		return m, nil
	}

	if m.state == categoriesStateConfirm {
		return m.updateConfirm(msg)
	}

	return m.updateBrowse(msg)
}

func (m CategoriesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "i":
			m.showAll = !m.showAll
			m.loading = true

			return m, m.loadCmd()
		case "d":
			if c := m.selected(); c != nil {
				return m, m.previewCmd(c)
			}

			return m, nil
		case "a":
			if c := m.selected(); c != nil && !c.Active {
				return m, m.reactivateCmd(c)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CategoriesModel) enterConfirm(c *category.Category, d category.LifecycleDecision) (tea.Model, tea.Cmd) {
	verb := "Delete"
	if d.Action == category.ActionDeactivate {
		verb = "Deactivate"
	}

	m.pending = c
	m.decision = d
	m.answer = new(bool)
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s %q?", verb, c.Name)).
				Description(d.Message).
				Affirmative(verb).
				Negative("Cancel").
				Value(m.answer),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = categoriesStateConfirm
	m.table.Blur()

	return m, m.confirm.Init()
}

func (m CategoriesModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.cancelConfirm()
	}

	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}

	switch m.confirm.State {
	case huh.StateCompleted:
		if !*m.answer {
			return m.cancelConfirm()
		}

		return m, m.deleteCmd(m.pending)
	case huh.StateAborted:
		return m.cancelConfirm()
	}

	return m, cmd
}

func (m CategoriesModel) cancelConfirm() (tea.Model, tea.Cmd) {
	m.state = categoriesStateBrowse
	m.confirm = nil
	m.pending = nil
	m.status = ""
	m.table.Focus()

	return m, nil
}

func (m CategoriesModel) selected() *category.Category {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.cats) {
		return nil
	}

	return m.cats[idx]
}

func (m *CategoriesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.cats))

	for _, c := range m.cats {
		active := "yes"
		if !c.Active {
			active = "no"
		}

		rows = append(rows, table.Row{
			c.Name,
			string(c.Kind),
			lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(c.Color),
			active,
		})
	}

	m.table.SetRows(rows)
}

func (m CategoriesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading categories...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(dangerStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	filter := "active only"
	if m.showAll {
		filter = "including inactive"
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render("Showing: "+activeStyle(filter)),
		tableView,
	)

	if m.state == categoriesStateConfirm && m.confirm != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(64).
			Render(fmt.Sprintf("%s\n\nBudgets removed: %d\n\n%s",
				m.decision.Message, m.decision.BudgetsRemoved, m.confirm.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type loadCategoriesMsg struct {
	cats []*category.Category
	err  error
}

type previewMsg struct {
	cat      *category.Category
	decision category.LifecycleDecision
	err      error
}

type lifecycleDoneMsg struct {
	status string
	err    error
}

func (m CategoriesModel) loadCmd() tea.Cmd {
	filter := category.ListFilter{IncludeInactive: m.showAll}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := m.session.Categories.List(ctx, m.session.Actor, filter)

		return loadCategoriesMsg{cats: cats, err: err}
	}
}

func (m CategoriesModel) previewCmd(c *category.Category) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.session.Categories.Preview(ctx, m.session.Actor, c.ID)

		return previewMsg{cat: c, decision: d, err: err}
	}
}

func (m CategoriesModel) deleteCmd(c *category.Category) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.session.Categories.Delete(ctx, m.session.Actor, c.ID)
		if err != nil {
			return lifecycleDoneMsg{err: err}
		}

		if d.Action == category.ActionDeactivate {
			return lifecycleDoneMsg{status: fmt.Sprintf("%q deactivated.", c.Name)}
		}

		return lifecycleDoneMsg{status: fmt.Sprintf("%q deleted.", c.Name)}
	}
}

func (m CategoriesModel) reactivateCmd(c *category.Category) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.session.Categories.Reactivate(ctx, m.session.Actor, c.ID); err != nil {
			return lifecycleDoneMsg{err: err}
		}

		return lifecycleDoneMsg{status: fmt.Sprintf("%q reactivated.", c.Name)}
	}
}
