package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/budgetkeeper/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/app"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/config"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/database"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

type screen int

const (
	screenMenu screen = iota
	screenBudgets
	screenCategories
	screenEntry
	screenList
	screenImport
	screenExport
)

var menuStyle = lipgloss.NewStyle().Padding(2)

type model struct {
	session view.Session
	current screen
	active  view.View
	frame   view.Frame
}

func newModel(session view.Session) model {
	return model{session: session, current: screenMenu}
}

func (m model) Init() tea.Cmd {
	return nil
}

// open builds a fresh screen each time so nothing stale survives a round trip
// through the menu.
func (m model) open(s screen) (tea.Model, tea.Cmd) {
	switch s {
	case screenBudgets:
		m.active = view.NewBudgetsModel(m.session)
	case screenCategories:
		m.active = view.NewCategoriesModel(m.session)
	case screenEntry:
		m.active = view.NewEntryModel(m.session)
	case screenList:
		m.active = view.NewListModel(m.session)
	case screenImport:
		m.active = view.NewImportModel(m.session)
	case screenExport:
		m.active = view.NewExportModel(m.session)
	default:
		return m, nil
	}

	m.current = s

	return m, tea.Batch(m.active.Init(), m.frame.Replay())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.frame = view.Frame{Width: msg.Width, Height: msg.Height}
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.current == screenMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.open(screenBudgets)
			case "2":
				return m.open(screenCategories)
			case "3":
				return m.open(screenEntry)
			case "4":
				return m.open(screenList)
			case "5":
				return m.open(screenImport)
			case "6":
				return m.open(screenExport)
			}

			return m, nil
		}
	case view.BackMsg:
		m.current = screenMenu
		m.active = nil

		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	if v, ok := next.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) View() string {
	if m.current == screenMenu || m.active == nil {
		return menuStyle.Render(
			"BudgetKeeper\n\n" +
				"1. Budgets\n" +
				"2. Categories\n" +
				"3. New Transaction\n" +
				"4. Transactions\n" +
				"5. Import Statement\n" +
				"6. Export Transactions\n\n" +
				"q. Quit",
		)
	}

	header := lipgloss.NewStyle().Bold(true).Render(m.active.Title())
	help := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.active.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, header, m.active.View(), help)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logOut := io.Discard

	if cfg.TUI.LogFile != "" {
		f, err := tea.LogToFile(cfg.TUI.LogFile, "tui")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()

		logOut = f
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Level()})))

	if cfg.TUI.UserEmail == "" {
		return errors.New("TUI_USER_EMAIL is required")
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.ConnectionString(), database.Pool{
		MaxOpen:     cfg.DB.MaxOpenConns,
		MaxIdle:     cfg.DB.MaxIdleConns,
		MaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := app.New(db, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	u, err := svc.Users.Lookup(ctx, cfg.TUI.UserEmail)
	if errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("no user registered as %s", cfg.TUI.UserEmail)
	}

	if err != nil {
		return err
	}

	session := view.Session{
		Actor:        u.Actor(),
		Budgets:      svc.Budgets,
		Categories:   svc.Categories,
		Transactions: svc.Transactions,
		Import:       svc.Import,
		Export:       svc.Export,
	}

	slog.Info("tui started", "user_id", u.ID)

	if _, err := tea.NewProgram(newModel(session), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}
