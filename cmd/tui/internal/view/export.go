package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/export"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
)

type exportState int

const (
	exportStateTimeframe exportState = iota
	exportStatePath
	exportStateExporting
	exportStateResult
)

const exportTimeout = 2 * time.Minute

type exportFields struct {
	Path string
	Type string
}

const allTypes = "all"

type ExportModel struct {
	Frame
	session Session

	state           exportState
	err             error
	timeframePicker TimeframePicker
	filter          transaction.ListFilter

	form    *huh.Form
	fields  *exportFields
	spinner spinner.Model

	written string
	count   int
	summary string
}

func NewExportModel(session Session) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		session:         session,
		state:           exportStateTimeframe,
		timeframePicker: NewTimeframePicker(),
		fields:          &exportFields{},
		spinner:         s,
	}
}

func (m ExportModel) Title() string { return "Export Transactions" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tfMsg, ok := msg.(TimeframeSelectedMsg); ok {
		m.filter = tfMsg.Filter(transaction.ListFilter{})
		m.fields = &exportFields{Path: export.Filename(m.filter, time.Now()), Type: allTypes}
		m.form = m.buildPathForm()
		m.state = exportStatePath

		return m, m.form.Init()
	}

	switch m.state {
	case exportStateTimeframe:
		return m.updateTimeframe(msg)
	case exportStatePath:
		return m.updatePath(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m ExportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = exportStateTimeframe
			m.timeframePicker.Reset()

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

	filter := m.filter
	if m.fields.Type != allTypes {
		filter.Type = new(transaction.Type(m.fields.Type))
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(filter, strings.TrimSpace(m.fields.Path)))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.written = result.path
		m.count = result.count
		m.summary = result.summary

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transactions").
				Options(
					huh.NewOption("Expenses and income", allTypes),
					huh.NewOption("Expenses only", string(transaction.TypeExpense)),
					huh.NewOption("Income only", string(transaction.TypeIncome)),
				).
				Value(&m.fields.Type),
			huh.NewInput().
				Title("Output file").
				Description("Missing directories are created").
				Value(&m.fields.Path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a file name is required")
					}

					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case exportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Writing transactions...", m.spinner.View()),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(
			dangerStyle.Render(fmt.Sprintf("Error: %v", m.err)),
		)
	}

	header := okStyle.Bold(true).Render(fmt.Sprintf("Exported %d transactions to %s", m.count, m.written))

	summary := m.summary
	if summary == "" {
		summary = faintStyle.Render("(no transactions in this range)")
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			summary,
		),
	)
}

type exportResultMsg struct {
	path    string
	count   int
	summary string
	err     error
}

func (m ExportModel) runExportCmd(filter transaction.ListFilter, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		count, err := writeExport(ctx, m.session, filter, path)
		if err != nil {
			return exportResultMsg{err: err}
		}

		summary, err := m.session.Export.Summary(ctx, m.session.Actor, filter)
		if err != nil {
			return exportResultMsg{err: fmt.Errorf("failed to build summary: %w", err)}
		}

		return exportResultMsg{path: path, count: count, summary: summary}
	}
}

func writeExport(ctx context.Context, session Session, filter transaction.ListFilter, path string) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	count, err := session.Export.WriteCSV(ctx, session.Actor, filter, f)
	if err != nil {
		f.Close()
		os.Remove(path)

		return 0, err
	}

	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close file: %w", err)
	}

	return count, nil
}
