package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/guard"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id uuid.UUID) (*Budget, error)
	// FindBudget returns nil, nil when the owner has no budget for the category.
	FindBudget(ctx context.Context, ownerUserID, categoryID uuid.UUID) (*Budget, error)
	ListBudgets(ctx context.Context, filter ListFilter) ([]*Budget, error)
	UpdateBudget(ctx context.Context, b *Budget) error
	DeleteBudget(ctx context.Context, id uuid.UUID) error

	ListSpend(ctx context.Context, filter SpendFilter) ([]Spend, error)
}

type CategoryLookup interface {
	GetCategory(ctx context.Context, id uuid.UUID) (*category.Category, error)
}

type ListFilter struct {
	OwnerUserID *uuid.UUID
	CategoryID  *uuid.UUID
}

// SpendFilter selects expense transactions of one owner and category whose
// date falls in [Start, End].
type SpendFilter struct {
	OwnerUserID uuid.UUID
	CategoryID  uuid.UUID
	Start       time.Time
	End         time.Time
}

type CreateParams struct {
	OwnerUserID uuid.UUID
	CategoryID  uuid.UUID
	AmountLimit decimal.Decimal
	Period      Period
}

type UpdateParams struct {
	CategoryID  *uuid.UUID
	AmountLimit *decimal.Decimal
	Period      *Period
}

type ProgressStatus string

const (
	StatusOK      ProgressStatus = "ok"
	StatusWarning ProgressStatus = "warning"
	StatusDanger  ProgressStatus = "danger"
)

// Progress is a budget's consumption in the period containing the reference date.
type Progress struct {
	Budget            *Budget
	WindowStart       time.Time
	WindowEnd         time.Time
	Spent             decimal.Decimal
	Available         decimal.Decimal
	Percentage        decimal.Decimal
	DisplayPercentage decimal.Decimal // capped at 100
	Exceeded          bool
	Status            ProgressStatus
}

const progressConcurrency = 4

type Service struct {
	repo       Repository
	categories CategoryLookup
	now        func() time.Time
}

func NewService(repo Repository, categories CategoryLookup) *Service {
	return &Service{repo: repo, categories: categories, now: time.Now}
}

// Check evaluates a candidate expense against its budget. Lookup failures never
// block the caller: they are logged and reported as LookupFailed.
func (s *Service) Check(ctx context.Context, actor user.Actor, c Candidate) (Decision, error) {
	owner, err := actor.TargetOwner(c.OwnerUserID)
	if err != nil {
		return Decision{}, err
	}

	c.OwnerUserID = owner

	if err := c.Validate(); err != nil {
		return Decision{}, err
	}

	if c.Date.IsZero() {
		c.Date = s.now()
	}

	b, err := s.repo.FindBudget(ctx, c.OwnerUserID, c.CategoryID)
	if err != nil {
		slog.WarnContext(ctx, "budget lookup failed, allowing transaction",
			"category_id", c.CategoryID, "owner_user_id", c.OwnerUserID, "error", err)

		return FailOpen(c), nil
	}

	if b == nil {
		return Evaluate(c, nil, nil)
	}

	start, end := b.Period.Window(c.Date)

	spend, err := s.repo.ListSpend(ctx, SpendFilter{
		OwnerUserID: c.OwnerUserID,
		CategoryID:  c.CategoryID,
		Start:       start,
		End:         end,
	})
	if err != nil {
		slog.WarnContext(ctx, "spend lookup failed, allowing transaction",
			"budget_id", b.ID, "error", err)

		return FailOpen(c), nil
	}

	d, err := Evaluate(c, b, spend)
	if err != nil {
		slog.WarnContext(ctx, "budget evaluation failed, allowing transaction",
			"budget_id", b.ID, "error", err)

		return FailOpen(c), nil
	}

	return d, nil
}

func (s *Service) Create(ctx context.Context, actor user.Actor, params CreateParams) (*Budget, error) {
	owner, err := actor.TargetOwner(params.OwnerUserID)
	if err != nil {
		return nil, err
	}

	b := &Budget{
		OwnerUserID: owner,
		CategoryID:  params.CategoryID,
		AmountLimit: params.AmountLimit,
		Period:      params.Period,
	}

	if err := s.validate(ctx, b, true); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, b, nil); err != nil {
		return nil, err
	}

	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Update(ctx context.Context, actor user.Actor, id uuid.UUID, params UpdateParams) (*Budget, error) {
	b, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	// A budget kept on a deactivated category stays editable; moving a budget
	// onto an inactive category is not allowed.
	retarget := params.CategoryID != nil && *params.CategoryID != b.CategoryID

	if params.CategoryID != nil {
		b.CategoryID = *params.CategoryID
	}

	if params.AmountLimit != nil {
		b.AmountLimit = *params.AmountLimit
	}

	if params.Period != nil {
		b.Period = *params.Period
	}

	if err := s.validate(ctx, b, retarget); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, b, &b.ID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*Budget, error) {
	b, err := s.repo.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := actor.Authorize(b.OwnerUserID); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) List(ctx context.Context, actor user.Actor, filter ListFilter) ([]*Budget, error) {
	filter.OwnerUserID = actor.ScopeOwner(filter.OwnerUserID)
	return s.repo.ListBudgets(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}

	return s.repo.DeleteBudget(ctx, id)
}

// Progress reports consumption of every visible budget in the period that contains ref.
func (s *Service) Progress(ctx context.Context, actor user.Actor, filter ListFilter, ref time.Time) ([]Progress, error) {
	budgets, err := s.List(ctx, actor, filter)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}

	if ref.IsZero() {
		ref = s.now()
	}

	out := make([]Progress, len(budgets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(progressConcurrency)

	for i, b := range budgets {
		g.Go(func() error {
			start, end := b.Period.Window(ref)

			spend, err := s.repo.ListSpend(gctx, SpendFilter{
				OwnerUserID: b.OwnerUserID,
				CategoryID:  b.CategoryID,
				Start:       start,
				End:         end,
			})
			if err != nil {
				return fmt.Errorf("listing spend for budget %s: %w", b.ID, err)
			}

			out[i] = progressOf(b, start, end, spend)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func progressOf(b *Budget, start, end time.Time, spend []Spend) Progress {
	spent := decimal.Zero
	for _, sp := range spend {
		spent = spent.Add(sp.Amount)
	}

	p := Progress{
		Budget:      b,
		WindowStart: start,
		WindowEnd:   end,
		Spent:       spent,
		Available:   b.AmountLimit.Sub(spent),
		Exceeded:    spent.GreaterThan(b.AmountLimit),
	}

	if b.AmountLimit.IsPositive() {
		p.Percentage = spent.Mul(hundred).Div(b.AmountLimit)
	}

	p.DisplayPercentage = decimal.Min(p.Percentage, hundred)

	switch {
	case p.Percentage.LessThan(WarningPercentage):
		p.Status = StatusOK
	case p.Percentage.LessThan(CriticalPercentage):
		p.Status = StatusWarning
	default:
		p.Status = StatusDanger
	}

	return p
}

func (s *Service) validate(ctx context.Context, b *Budget, requireActive bool) error {
	var verrs validation.Errors

	if !b.AmountLimit.IsPositive() {
		verrs.Add("amount_limit", "must be greater than zero")
	}

	if !b.Period.Valid() {
		verrs.Add("period", "must be monthly or yearly")
	}

	if b.CategoryID == uuid.Nil {
		verrs.Add("category_id", "is required")
		return verrs.Err()
	}

	c, err := s.categories.GetCategory(ctx, b.CategoryID)

	switch {
	case errors.Is(err, category.ErrNotFound):
		verrs.Add("category_id", "does not exist")
	case err != nil:
		return fmt.Errorf("getting category: %w", err)
	case c.OwnerUserID != b.OwnerUserID:
		verrs.Add("category_id", "belongs to another user")
	case c.Kind != category.KindExpense:
		verrs.Add("category_id", "must be an expense category")
	case requireActive && !c.Active:
		verrs.Add("category_id", "is inactive")
	default:
		b.CategoryName = c.Name
	}

	return verrs.Err()
}

func (s *Service) ensureUnique(ctx context.Context, b *Budget, excludingID *uuid.UUID) error {
	owner := b.OwnerUserID

	existing, err := s.repo.ListBudgets(ctx, ListFilter{OwnerUserID: &owner})
	if err != nil {
		return fmt.Errorf("listing budgets: %w", err)
	}

	records := make([]guard.Record[uuid.UUID], len(existing))
	for i, e := range existing {
		records[i] = guard.Record[uuid.UUID]{ID: e.ID, Key: e.CategoryID, ScopeUserID: e.OwnerUserID}
	}

	dup, found := guard.FindConflict(b.CategoryID, owner, excludingID, records)
	if !found {
		return nil
	}

	for _, e := range existing {
		if e.ID == dup.ID {
			return &DuplicateError{Existing: e}
		}
	}

	return ErrDuplicate
}
