package view

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/importer"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

type Budgets interface {
	Progress(ctx context.Context, actor user.Actor, filter budget.ListFilter, ref time.Time) ([]budget.Progress, error)
}

type Categories interface {
	List(ctx context.Context, actor user.Actor, filter category.ListFilter) ([]*category.Category, error)
	Preview(ctx context.Context, actor user.Actor, id uuid.UUID) (category.LifecycleDecision, error)
	Delete(ctx context.Context, actor user.Actor, id uuid.UUID) (category.LifecycleDecision, error)
	Reactivate(ctx context.Context, actor user.Actor, id uuid.UUID) (*category.Category, error)
}

type Transactions interface {
	Create(ctx context.Context, actor user.Actor, params transaction.CreateParams) (*transaction.Transaction, budget.Decision, error)
	Update(ctx context.Context, actor user.Actor, id uuid.UUID, params transaction.UpdateParams) (*transaction.Transaction, budget.Decision, error)
	List(ctx context.Context, actor user.Actor, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error
}

type Importer interface {
	Import(ctx context.Context, actor user.Actor, params importer.Params) (*importer.Result, error)
}

type Exporter interface {
	WriteCSV(ctx context.Context, actor user.Actor, filter transaction.ListFilter, w io.Writer) (int, error)
	Summary(ctx context.Context, actor user.Actor, filter transaction.ListFilter) (string, error)
}

// Session is what every screen runs with: the signed-in user and the services
// acting on their behalf.
type Session struct {
	Actor        user.Actor
	Budgets      Budgets
	Categories   Categories
	Transactions Transactions
	Import       Importer
	Export       Exporter
}
