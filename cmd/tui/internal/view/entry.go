package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
)

type entryState int

const (
	entryStateLoading entryState = iota
	entryStateForm
	entryStateSaving
	entryStateBlocked
	entryStateResult
)

// entryFields lives on the heap so the form bindings survive model copies.
type entryFields struct {
	Type        transaction.Type
	CategoryID  uuid.UUID
	Amount      string
	Description string
	Date        string
	Override    bool
}

// EntryModel records a single transaction. An expense its budget blocks is
// only saved after an explicit override.
type EntryModel struct {
	Frame
	session Session

	state  entryState
	cats   []*category.Category
	fields *entryFields
	form   *huh.Form

	decision budget.Decision
	saved    *transaction.Transaction
	err      error
}

func NewEntryModel(session Session) EntryModel {
	return EntryModel{
		session: session,
		state:   entryStateLoading,
	}
}

func (m EntryModel) Title() string { return "New Transaction" }

func (m EntryModel) ShortHelp() string {
	switch m.state {
	case entryStateResult:
		return "Enter: another | Esc: back"
	case entryStateBlocked:
		return "←/→: choose | Enter: confirm | Esc: cancel"
	}

	return "Tab: next | Esc: back"
}

func (m EntryModel) Init() tea.Cmd {
	return m.loadCategoriesCmd()
}

func (m EntryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entryCategoriesMsg:
		if msg.err != nil {
			m.state = entryStateResult
			m.err = msg.err

			return m, nil
		}

		m.cats = msg.cats

		return m.newForm()

	case entrySavedMsg:
		return m.handleSaved(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		if m.state == entryStateBlocked {
			m.state = entryStateResult
			m.err = &transaction.BlockedError{Decision: m.decision}

			return m, nil
		}

		return m, Back
	}

	switch m.state {
	case entryStateForm:
		return m.updateForm(msg)
	case entryStateBlocked:
		return m.updateBlocked(msg)
	case entryStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
			return m.newForm()
		}
	}

	return m, nil
}

func (m EntryModel) newForm() (tea.Model, tea.Cmd) {
	m.fields = &entryFields{
		Type: transaction.TypeExpense,
		Date: FormatDate(time.Now()),
	}
	m.err = nil
	m.saved = nil
	m.decision = budget.Decision{}

	fields := m.fields

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Type]().
				Title("Type").
				Options(
					huh.NewOption("Expense", transaction.TypeExpense),
					huh.NewOption("Income", transaction.TypeIncome),
				).
				Value(&fields.Type),

			huh.NewSelect[uuid.UUID]().
				Title("Category").
				OptionsFunc(func() []huh.Option[uuid.UUID] {
					return categoryOptions(m.cats, fields.Type)
				}, &fields.Type).
				Value(&fields.CategoryID).
				Validate(func(id uuid.UUID) error {
					if id == uuid.Nil {
						return errors.New("pick a category")
					}

					return nil
				}),

			huh.NewInput().
				Title("Amount").
				Placeholder("12.50").
				Value(&fields.Amount).
				Validate(func(s string) error {
					_, err := parseEntryAmount(s)
					return err
				}),

			huh.NewInput().
				Title("Description").
				Value(&fields.Description),

			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&fields.Date).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
						return errors.New("use YYYY-MM-DD")
					}

					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = entryStateForm

	return m, m.form.Init()
}

func categoryOptions(cats []*category.Category, t transaction.Type) []huh.Option[uuid.UUID] {
	var opts []huh.Option[uuid.UUID]

	for _, c := range cats {
		if c.Active && string(c.Kind) == string(t) {
			opts = append(opts, huh.NewOption(c.Name, c.ID))
		}
	}

	if len(opts) == 0 {
		opts = append(opts, huh.NewOption(fmt.Sprintf("(no active %s categories)", t), uuid.Nil))
	}

	return opts
}

func parseEntryAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}

	if !d.IsPositive() {
		return decimal.Zero, errors.New("must be greater than zero")
	}

	return d.Round(2), nil
}

func (m EntryModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = entryStateSaving
		return m, m.createCmd(false)
	case huh.StateAborted:
		return m, Back
	}

	return m, cmd
}

func (m EntryModel) handleSaved(msg entrySavedMsg) (tea.Model, tea.Cmd) {
	m.decision = msg.decision

	var blocked *transaction.BlockedError
	if errors.As(msg.err, &blocked) {
		m.decision = blocked.Decision
		m.fields.Override = false
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Record it anyway?").
					Affirmative("Record").
					Negative("Cancel").
					Value(&m.fields.Override),
			),
		).WithWidth(50).WithShowHelp(false)
		m.state = entryStateBlocked

		return m, m.form.Init()
	}

	m.state = entryStateResult
	m.err = msg.err
	m.saved = msg.tx

	return m, nil
}

func (m EntryModel) updateBlocked(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.fields.Override {
		m.state = entryStateResult
		m.err = &transaction.BlockedError{Decision: m.decision}

		return m, nil
	}

	m.state = entryStateSaving

	return m, m.createCmd(true)
}

func (m EntryModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case entryStateLoading:
		return style.Render("Loading categories...")
	case entryStateForm:
		return style.Render(m.form.View())
	case entryStateSaving:
		return style.Render("Saving...")
	case entryStateBlocked:
		return style.Render(lipgloss.JoinVertical(lipgloss.Left,
			FormatDecision(m.decision),
			"",
			m.form.View(),
		))
	}

	if m.err != nil {
		return style.Render(dangerStyle.Render(fmt.Sprintf("Not saved: %v", m.err)) + "\n\n(Enter for another, Esc to go back)")
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		okStyle.Render(fmt.Sprintf("Saved %s %s in %s.", FormatSigned(m.saved), m.saved.Description, m.saved.CategoryName)),
		"",
		FormatDecision(m.decision),
		"",
		"(Enter for another, Esc to go back)",
	))
}

// Messages

type entryCategoriesMsg struct {
	cats []*category.Category
	err  error
}

type entrySavedMsg struct {
	tx       *transaction.Transaction
	decision budget.Decision
	err      error
}

func (m EntryModel) loadCategoriesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := m.session.Categories.List(ctx, m.session.Actor, category.ListFilter{})

		return entryCategoriesMsg{cats: cats, err: err}
	}
}

func (m EntryModel) createCmd(override bool) tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		amount, err := parseEntryAmount(f.Amount)
		if err != nil {
			return entrySavedMsg{err: err}
		}

		date, err := time.Parse(time.DateOnly, strings.TrimSpace(f.Date))
		if err != nil {
			return entrySavedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		tx, d, err := m.session.Transactions.Create(ctx, m.session.Actor, transaction.CreateParams{
			CategoryID:        f.CategoryID,
			Amount:            amount,
			Type:              f.Type,
			Description:       f.Description,
			Date:              date,
			ConfirmOverBudget: override,
		})

		return entrySavedMsg{tx: tx, decision: d, err: err}
	}
}
