package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
)

// Timeframe is a preset date range. The month and year presets cover whole
// budget periods so exported totals line up with budget progress.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeLastYear
	TimeframeAll
	TimeframeCustom
)

var timeframes = []Timeframe{
	TimeframeThisMonth,
	TimeframeLastMonth,
	TimeframeThisYear,
	TimeframeLastYear,
	TimeframeAll,
	TimeframeCustom,
}

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisYear:
		return "This Year"
	case TimeframeLastYear:
		return "Last Year"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Range returns the first and last day of the preset relative to now. All and
// Custom have no fixed range and return zero times.
func (t Timeframe) Range(now time.Time) (time.Time, time.Time) {
	switch t {
	case TimeframeThisMonth:
		return budget.PeriodMonthly.Window(now)
	case TimeframeLastMonth:
		start, _ := budget.PeriodMonthly.Window(now)
		return budget.PeriodMonthly.Window(start.AddDate(0, 0, -1))
	case TimeframeThisYear:
		return budget.PeriodYearly.Window(now)
	case TimeframeLastYear:
		start, _ := budget.PeriodYearly.Window(now)
		return budget.PeriodYearly.Window(start.AddDate(0, 0, -1))
	}

	return time.Time{}, time.Time{}
}

// TimeframeSelectedMsg is emitted once a range is chosen. Start and End are
// zero when All is true.
type TimeframeSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

// Filter narrows a transaction filter to the selected range.
func (m TimeframeSelectedMsg) Filter(f transaction.ListFilter) transaction.ListFilter {
	if m.All {
		f.StartDate, f.EndDate = nil, nil
		return f
	}

	start, end := m.Start, m.End
	f.StartDate, f.EndDate = &start, &end

	return f
}

type rangeFields struct {
	Start string
	End   string
}

// parse validates a custom range typed as YYYY-MM-DD.
func (r *rangeFields) parse() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(r.Start))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	end, err := time.Parse(time.DateOnly, strings.TrimSpace(r.End))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date is before start date")
	}

	return start, end, nil
}

func validDate(s string) error {
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}

	return nil
}

// TimeframePicker selects a preset or custom date range and reports it as a
// TimeframeSelectedMsg.
type TimeframePicker struct {
	cursor int
	now    func() time.Time

	custom *huh.Form
	fields *rangeFields
	err    error
}

func NewTimeframePicker() TimeframePicker {
	return TimeframePicker{now: time.Now}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if m.custom != nil {
		return m.updateCustom(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(timeframes)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		return m.choose(timeframes[m.cursor])
	}

	return m, nil
}

func (m TimeframePicker) choose(tf Timeframe) (TimeframePicker, tea.Cmd) {
	switch tf {
	case TimeframeAll:
		return m, selectRange(TimeframeSelectedMsg{All: true})
	case TimeframeCustom:
		m.fields = &rangeFields{}
		m.custom = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").CharLimit(10).
					Value(&m.fields.Start).Validate(validDate),
				huh.NewInput().Title("End date").Placeholder("YYYY-MM-DD").CharLimit(10).
					Value(&m.fields.End).Validate(validDate),
			),
		).WithWidth(40).WithShowHelp(false)

		return m, m.custom.Init()
	}

	start, end := tf.Range(m.now())

	return m, selectRange(TimeframeSelectedMsg{Start: start, End: end})
}

func (m TimeframePicker) updateCustom(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.Reset()
		return m, nil
	}

	form, cmd := m.custom.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.custom = f
	}

	if m.custom.State != huh.StateCompleted {
		return m, cmd
	}

	start, end, err := m.fields.parse()
	if err != nil {
		m.err = err
		m.custom = nil

		return m, nil
	}

	m.err = nil
	m.custom = nil

	return m, selectRange(TimeframeSelectedMsg{Start: start, End: end})
}

func selectRange(msg TimeframeSelectedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m TimeframePicker) View() string {
	if m.custom != nil {
		return "Custom range:\n\n" + m.custom.View() + "\n" + faintStyle.Render("(Esc to go back)")
	}

	var b strings.Builder

	b.WriteString("Select timeframe:\n\n")

	now := m.now()

	for i, tf := range timeframes {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		label := tf.String()
		if start, end := tf.Range(now); !start.IsZero() {
			label += faintStyle.Render(fmt.Sprintf("  %s → %s", FormatDate(start), FormatDate(end)))
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, label)
	}

	b.WriteString("\n(Enter to select, Esc to back)")

	if m.err != nil {
		b.WriteString("\n\n" + dangerStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return b.String()
}

// IsSelecting reports whether the preset list is showing.
func (m TimeframePicker) IsSelecting() bool {
	return m.custom == nil
}

func (m *TimeframePicker) Reset() {
	m.custom = nil
	m.fields = nil
	m.err = nil
}
