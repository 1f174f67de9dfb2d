package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/notify"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

type BudgetChecker interface {
	Check(ctx context.Context, actor user.Actor, c budget.Candidate) (budget.Decision, error)
}

type CategoryLookup interface {
	GetCategory(ctx context.Context, id uuid.UUID) (*category.Category, error)
}

type Publisher interface {
	Publish(ctx context.Context, e notify.Event) error
}

type Service struct {
	repo       Repository
	budgets    BudgetChecker
	categories CategoryLookup
	publisher  Publisher
	now        func() time.Time
}

func NewService(repo Repository, budgets BudgetChecker, categories CategoryLookup, publisher Publisher) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}

	return &Service{
		repo:       repo,
		budgets:    budgets,
		categories: categories,
		publisher:  publisher,
		now:        time.Now,
	}
}

type CreateParams struct {
	OwnerUserID    uuid.UUID
	CategoryID     uuid.UUID
	Amount         decimal.Decimal
	Type           Type
	Description    string
	RawDescription string
	Date           time.Time

	// ConfirmOverBudget persists an expense even when its budget blocks it.
	ConfirmOverBudget bool
}

type UpdateParams struct {
	CategoryID  *uuid.UUID
	Amount      *decimal.Decimal
	Type        *Type
	Description *string
	Date        *time.Time

	ConfirmOverBudget bool
}

type ListFilter struct {
	OwnerUserID *uuid.UUID
	CategoryID  *uuid.UUID
	Type        *Type
	StartDate   *time.Time
	EndDate     *time.Time
}

// Create validates the transaction, checks expenses against their budget and
// persists it. The returned decision is what the budget said about the write.
func (s *Service) Create(ctx context.Context, actor user.Actor, params CreateParams) (*Transaction, budget.Decision, error) {
	owner, err := actor.TargetOwner(params.OwnerUserID)
	if err != nil {
		return nil, budget.Decision{}, err
	}

	tx := &Transaction{
		OwnerUserID:    owner,
		CategoryID:     params.CategoryID,
		Amount:         params.Amount,
		Type:           params.Type,
		Description:    strings.TrimSpace(params.Description),
		RawDescription: params.RawDescription,
		Date:           truncateDay(params.Date),
	}

	if err := s.validate(ctx, tx, nil); err != nil {
		return nil, budget.Decision{}, err
	}

	decision, err := s.decide(ctx, actor, tx, nil, params.ConfirmOverBudget)
	if err != nil {
		return nil, decision, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, decision, err
	}

	s.notify(ctx, tx, decision)

	return tx, decision, nil
}

// Update re-checks the edited transaction against its budget, excluding its own
// previous amount. The owner never changes.
func (s *Service) Update(ctx context.Context, actor user.Actor, id uuid.UUID, params UpdateParams) (*Transaction, budget.Decision, error) {
	tx, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, budget.Decision{}, err
	}

	previous := *tx

	if params.CategoryID != nil {
		tx.CategoryID = *params.CategoryID
	}

	if params.Amount != nil {
		tx.Amount = *params.Amount
	}

	if params.Type != nil {
		tx.Type = *params.Type
	}

	if params.Description != nil {
		tx.Description = strings.TrimSpace(*params.Description)
	}

	if params.Date != nil {
		tx.Date = truncateDay(*params.Date)
	}

	if err := s.validate(ctx, tx, &previous); err != nil {
		return nil, budget.Decision{}, err
	}

	decision, err := s.decide(ctx, actor, tx, &tx.ID, params.ConfirmOverBudget)
	if err != nil {
		return nil, decision, err
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, decision, err
	}

	s.notify(ctx, tx, decision)

	return tx, decision, nil
}

func (s *Service) Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := actor.Authorize(tx.OwnerUserID); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) List(ctx context.Context, actor user.Actor, filter ListFilter) ([]*Transaction, error) {
	filter.OwnerUserID = actor.ScopeOwner(filter.OwnerUserID)
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}

	return s.repo.DeleteTransaction(ctx, id)
}

// FindDuplicates matches params against the owner's stored transactions on
// date, amount, type and raw description. The result is aligned with params:
// a nil entry means the row is new.
func (s *Service) FindDuplicates(ctx context.Context, actor user.Actor, owner uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	owner, err := actor.TargetOwner(owner)
	if err != nil {
		return nil, err
	}

	minDate, maxDate := dateRange(params)

	existing, err := s.repo.ListTransactions(ctx, ListFilter{
		OwnerUserID: &owner,
		StartDate:   &minDate,
		EndDate:     &maxDate,
	})
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	type dupKey struct {
		Date           string
		Amount         string
		Type           Type
		RawDescription string
	}

	lookup := make(map[dupKey]*Transaction, len(existing))

	for _, e := range existing {
		k := dupKey{
			Date:           e.Date.Format(time.DateOnly),
			Amount:         e.Amount.StringFixed(2),
			Type:           e.Type,
			RawDescription: e.RawDescription,
		}
		lookup[k] = e
	}

	matches := make([]*Transaction, len(params))

	for i, p := range params {
		k := dupKey{
			Date:           p.Date.Format(time.DateOnly),
			Amount:         p.Amount.StringFixed(2),
			Type:           p.Type,
			RawDescription: p.RawDescription,
		}

		matches[i] = lookup[k]
	}

	return matches, nil
}

func (s *Service) decide(ctx context.Context, actor user.Actor, tx *Transaction, excluding *uuid.UUID, confirm bool) (budget.Decision, error) {
	if tx.Type != TypeExpense {
		return budget.NotApplicable(tx.Amount), nil
	}

	decision, err := s.budgets.Check(ctx, actor, budget.Candidate{
		CategoryID:             tx.CategoryID,
		OwnerUserID:            tx.OwnerUserID,
		Amount:                 tx.Amount,
		Date:                   tx.Date,
		ExcludingTransactionID: excluding,
	})
	if err != nil {
		return budget.Decision{}, fmt.Errorf("checking budget: %w", err)
	}

	if decision.Blocked() && !confirm {
		return decision, &BlockedError{Decision: decision}
	}

	return decision, nil
}

func (s *Service) notify(ctx context.Context, tx *Transaction, d budget.Decision) {
	e, ok := notify.EventFor(d, tx.OwnerUserID, tx.CategoryID, tx.ID, s.now())
	if !ok {
		return
	}

	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Error("failed to publish budget event", "transaction_id", tx.ID, "error", err)
	}
}

// validate checks tx against its category. When editing, previous is the stored
// version: keeping a category that was deactivated since is allowed.
func (s *Service) validate(ctx context.Context, tx *Transaction, previous *Transaction) error {
	var verrs validation.Errors

	if !tx.Amount.IsPositive() {
		verrs.Add("amount", "must be greater than zero")
	}

	if !tx.Type.Valid() {
		verrs.Add("type", "must be income or expense")
	}

	if tx.Date.IsZero() {
		verrs.Add("date", "is required")
	} else if tx.Date.After(truncateDay(s.now())) {
		verrs.Add("date", "cannot be in the future")
	}

	if tx.CategoryID == uuid.Nil {
		verrs.Add("category_id", "is required")
		return verrs.Err()
	}

	c, err := s.categories.GetCategory(ctx, tx.CategoryID)

	switch {
	case errors.Is(err, category.ErrNotFound):
		verrs.Add("category_id", "does not exist")
	case err != nil:
		return fmt.Errorf("getting category: %w", err)
	case c.OwnerUserID != tx.OwnerUserID:
		verrs.Add("category_id", "belongs to another user")
	case string(c.Kind) != string(tx.Type):
		verrs.Add("category_id", fmt.Sprintf("is an %s category", c.Kind))
	case !c.Active && (previous == nil || previous.CategoryID != tx.CategoryID):
		verrs.Add("category_id", "is inactive")
	default:
		tx.CategoryName = c.Name
	}

	return verrs.Err()
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}
