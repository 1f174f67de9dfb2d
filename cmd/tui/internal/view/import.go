package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/importer"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/importer/statement"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateProfileSelect importState = iota
	importStateFilePick
	importStateCategories
	importStateImporting
	importStateResult
)

const autoDetect = "auto-detect"

type importFields struct {
	Expense uuid.UUID
	Income  uuid.UUID
}

type ImportModel struct {
	Frame
	session Session

	state          importState
	filePicker     filepicker.Model
	profileOptions []string
	profileCursor  int
	path           string

	cats   []*category.Category
	fields *importFields
	form   *huh.Form

	result  *importer.Result
	outcome list.Model

	status string
	err    error
}

func NewImportModel(session Session) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	profiles := []string{autoDetect}
	for _, p := range statement.Profiles {
		profiles = append(profiles, p.Name)
	}

	return ImportModel{
		session:        session,
		filePicker:     fp,
		profileOptions: profiles,
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateResult {
		return "↑/↓: scroll | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.loadCategoriesCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateProfileSelect:
			return m.updateProfileSelect(msg)
		case importStateResult:
			var cmd tea.Cmd
			m.outcome, cmd = m.outcome.Update(msg)

			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.Frame = Frame{Width: msg.Width, Height: msg.Height}
		if m.result != nil {
			m.outcome.SetSize(msg.Width-4, m.Frame.TableHeight(8))
		}

		return m, nil

	case importCategoriesMsg:
		m.cats = msg.cats
		m.err = msg.err

		return m, nil

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err
		m.result = msg.result
		m.status = summarize(msg.result)

		var rowErr *importer.RowError

		switch {
		case errors.As(msg.err, &rowErr) && msg.result != nil:
			m.status += fmt.Sprintf("\nStopped at %v", rowErr)
		case msg.err != nil:
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.outcome = newOutcomeList(msg.result)
		if m.Width > 0 {
			m.outcome.SetSize(m.Width-4, m.Frame.TableHeight(8))
		}

		return m, nil
	}

	switch m.state {
	case importStateCategories:
		return m.updateCategories(msg)
	case importStateFilePick:
		return m.updateFilePick(msg)
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateCategories:
		m.state = importStateProfileSelect
		return m, nil
	case importStateResult:
		m.state = importStateProfileSelect
		m.err = nil
		m.status = ""
		m.result = nil

		return m, nil
	case importStateImporting:
		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateProfileSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.profileCursor > 0 {
			m.profileCursor--
		}
	case tea.KeyDown:
		if m.profileCursor < len(m.profileOptions)-1 {
			m.profileCursor++
		}
	case tea.KeyEnter:
		m.state = importStateFilePick
		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		return m.enterCategories()
	}

	return m, cmd
}

// enterCategories asks which categories the new rows go to. Rows are only
// filed under the category of their own kind.
func (m ImportModel) enterCategories() (tea.Model, tea.Cmd) {
	m.fields = &importFields{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Category for expenses").
				Options(importCategoryOptions(m.cats, category.KindExpense)...).
				Value(&m.fields.Expense),
			huh.NewSelect[uuid.UUID]().
				Title("Category for income").
				Options(importCategoryOptions(m.cats, category.KindIncome)...).
				Value(&m.fields.Income),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = importStateCategories

	return m, m.form.Init()
}

func importCategoryOptions(cats []*category.Category, kind category.Kind) []huh.Option[uuid.UUID] {
	opts := []huh.Option[uuid.UUID]{huh.NewOption("(none)", uuid.Nil)}

	for _, c := range cats {
		if c.Active && c.Kind == kind {
			opts = append(opts, huh.NewOption(c.Name, c.ID))
		}
	}

	return opts
}

func (m ImportModel) updateCategories(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = importStateImporting
	m.status = fmt.Sprintf("Importing from %s...", m.path)

	return m, m.importCmd()
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateProfileSelect:
		return m.viewProfileSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select file to import (%s):\n\n%s", m.profileOptions[m.profileCursor], m.filePicker.View()),
		)
	case importStateCategories:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewProfileSelect() string {
	s := "Statement format:\n\n"

	for i, name := range m.profileOptions {
		cursor := " "
		if i == m.profileCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, name)
	}

	if m.err != nil {
		s += "\n" + dangerStyle.Render(fmt.Sprintf("Could not load categories: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(1)

	header := okStyle.Render(m.status)
	if m.err != nil {
		header = dangerStyle.Render(m.status)
	}

	if m.result == nil {
		return style.Render(header + "\n\n(Esc to go back)")
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.outcome.View()))
}

func summarize(r *importer.Result) string {
	if r == nil {
		return ""
	}

	return fmt.Sprintf("%s statement (%s): %d imported, %d with warnings, %d blocked, %d duplicates skipped.",
		r.Profile, r.Charset, len(r.Imported), len(r.Warnings), len(r.Blocked), len(r.Duplicates))
}

// Messages

type importCategoriesMsg struct {
	cats []*category.Category
	err  error
}

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) loadCategoriesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := m.session.Categories.List(ctx, m.session.Actor, category.ListFilter{})

		return importCategoriesMsg{cats: cats, err: err}
	}
}

func (m ImportModel) importCmd() tea.Cmd {
	path := m.path
	fields := *m.fields

	profile := m.profileOptions[m.profileCursor]
	if profile == autoDetect {
		profile = ""
	}

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.session.Import.Import(ctx, m.session.Actor, importer.Params{
			Profile:           profile,
			ExpenseCategoryID: fields.Expense,
			IncomeCategoryID:  fields.Income,
			Reader:            f,
		})

		return importResultMsg{result: result, err: err}
	}
}

// Outcome list

type outcomeKind int

const (
	outcomeImported outcomeKind = iota
	outcomeWarning
	outcomeBlocked
	outcomeDuplicate
)

type outcomeItem struct {
	kind   outcomeKind
	line   int
	date   time.Time
	amount string
	desc   string
	note   string
}

func (i outcomeItem) Title() string       { return i.desc }
func (i outcomeItem) Description() string { return i.note }
func (i outcomeItem) FilterValue() string { return i.desc }

func newOutcomeList(r *importer.Result) list.Model {
	var items []list.Item

	if r != nil {
		items = outcomeItems(r)
	}

	l := list.New(items, outcomeDelegate{}, 100, 20)
	l.Title = "Rows"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

func outcomeItems(r *importer.Result) []list.Item {
	warned := make(map[int]bool, len(r.Warnings))
	for _, w := range r.Warnings {
		warned[w.Line] = true
	}

	var items []outcomeItem

	for _, imp := range r.Imported {
		kind := outcomeImported
		if warned[imp.Line] {
			kind = outcomeWarning
		}

		items = append(items, outcomeItem{
			kind:   kind,
			line:   imp.Line,
			date:   imp.Transaction.Date,
			amount: FormatSigned(imp.Transaction),
			desc:   imp.Transaction.Description,
			note:   imp.Decision.Message(),
		})
	}

	for _, b := range r.Blocked {
		items = append(items, outcomeItem{
			kind:   outcomeBlocked,
			line:   b.Line,
			date:   b.Row.Date,
			amount: rowAmount(b.Row),
			desc:   b.Row.Description,
			note:   b.Decision.Message(),
		})
	}

	for _, d := range r.Duplicates {
		items = append(items, outcomeItem{
			kind:   outcomeDuplicate,
			line:   d.Line,
			date:   d.Row.Date,
			amount: rowAmount(d.Row),
			desc:   d.Row.Description,
			note:   fmt.Sprintf("already recorded as %q", d.Existing.Description),
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].line < items[j].line })

	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = it
	}

	return out
}

func rowAmount(r statement.Row) string {
	if r.Type == transaction.TypeExpense {
		return "-" + FormatAmount(r.Amount)
	}

	return "+" + FormatAmount(r.Amount)
}

type outcomeDelegate struct{}

func (d outcomeDelegate) Height() int                             { return 2 }
func (d outcomeDelegate) Spacing() int                            { return 0 }
func (d outcomeDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d outcomeDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(outcomeItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	var tag string

	switch item.kind {
	case outcomeWarning:
		tag = warningStyle.Render("[warn]")
	case outcomeBlocked:
		tag = dangerStyle.Render("[blocked]")
	case outcomeDuplicate:
		tag = faintStyle.Render("[duplicate]")
	default:
		tag = okStyle.Render("[ok]")
	}

	line1 := fmt.Sprintf("%s%-11s line %-4d %s  %10s  %s",
		cursor, tag, item.line, FormatDate(item.date), item.amount, item.desc)
	line2 := faintStyle.Render("      " + item.note)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
