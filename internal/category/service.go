package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/guard"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, filter ListFilter) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error

	CountTransactions(ctx context.Context, categoryID uuid.UUID) (int, error)
	ListBudgetRefs(ctx context.Context, categoryID uuid.UUID) ([]BudgetRef, error)

	BeginCascade(ctx context.Context) (CascadeTx, error)
}

// CascadeTx applies lifecycle steps atomically: nothing is visible until Commit.
type CascadeTx interface {
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteBudget(ctx context.Context, id uuid.UUID) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	Commit() error
	Rollback() error
}

type ListFilter struct {
	OwnerUserID     *uuid.UUID
	Kind            *Kind
	IncludeInactive bool
}

type CreateParams struct {
	OwnerUserID uuid.UUID
	Name        string
	Kind        Kind
	Color       string
}

type UpdateParams struct {
	Name  *string
	Kind  *Kind
	Color *string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, actor user.Actor, params CreateParams) (*Category, error) {
	owner, err := actor.TargetOwner(params.OwnerUserID)
	if err != nil {
		return nil, err
	}

	c := &Category{
		OwnerUserID: owner,
		Name:        NormalizeName(params.Name),
		Kind:        params.Kind,
		Color:       params.Color,
		Active:      true,
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}

	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, c, nil); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Update(ctx context.Context, actor user.Actor, id uuid.UUID, params UpdateParams) (*Category, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		c.Name = NormalizeName(*params.Name)
	}

	if params.Color != nil {
		c.Color = *params.Color
	}

	if params.Kind != nil && *params.Kind != c.Kind {
		count, err := s.repo.CountTransactions(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("counting transactions: %w", err)
		}

		if count > 0 {
			return nil, validation.New("kind", "cannot change while transactions use this category")
		}

		// Budgets only target expense categories.
		if c.Kind == KindExpense {
			budgets, err := s.repo.ListBudgetRefs(ctx, c.ID)
			if err != nil {
				return nil, fmt.Errorf("listing budgets: %w", err)
			}

			if len(budgets) > 0 {
				return nil, validation.New("kind", "cannot change while budgets use this category")
			}
		}

		c.Kind = *params.Kind
	}

	if err := validate(c); err != nil {
		return nil, err
	}

	if c.Active {
		if err := s.ensureUnique(ctx, c, &c.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Reactivate undoes a deactivation, unless another active category took the name meanwhile.
func (s *Service) Reactivate(ctx context.Context, actor user.Actor, id uuid.UUID) (*Category, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if c.Active {
		return c, nil
	}

	if err := s.ensureUnique(ctx, c, &c.ID); err != nil {
		return nil, err
	}

	c.Active = true
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := actor.Authorize(c.OwnerUserID); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) List(ctx context.Context, actor user.Actor, filter ListFilter) ([]*Category, error) {
	filter.OwnerUserID = actor.ScopeOwner(filter.OwnerUserID)
	return s.repo.ListCategories(ctx, filter)
}

// Preview resolves what deleting the category would do without changing anything.
func (s *Service) Preview(ctx context.Context, actor user.Actor, id uuid.UUID) (LifecycleDecision, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return LifecycleDecision{}, err
	}

	return s.resolve(ctx, c)
}

// Delete deactivates or removes the category. Lookup failures abort before
// anything is written; a failing step rolls back every earlier step.
func (s *Service) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) (LifecycleDecision, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return LifecycleDecision{}, err
	}

	decision, err := s.resolve(ctx, c)
	if err != nil {
		return LifecycleDecision{}, err
	}

	if err := s.execute(ctx, decision.Steps); err != nil {
		return LifecycleDecision{}, err
	}

	return decision, nil
}

func (s *Service) resolve(ctx context.Context, c *Category) (LifecycleDecision, error) {
	count, err := s.repo.CountTransactions(ctx, c.ID)
	if err != nil {
		return LifecycleDecision{}, fmt.Errorf("counting transactions: %w", err)
	}

	var budgets []BudgetRef
	if count == 0 {
		budgets, err = s.repo.ListBudgetRefs(ctx, c.ID)
		if err != nil {
			return LifecycleDecision{}, fmt.Errorf("listing budgets: %w", err)
		}
	}

	return ResolveDelete(*c, count, budgets), nil
}

const stepCommit StepKind = "commit"

func (s *Service) execute(ctx context.Context, steps []Step) error {
	cascade, err := s.repo.BeginCascade(ctx)
	if err != nil {
		return fmt.Errorf("beginning cascade: %w", err)
	}
	defer cascade.Rollback()

	for _, step := range steps {
		if err := applyStep(ctx, cascade, step); err != nil {
			if len(steps) == 1 {
				return fmt.Errorf("%s %s: %w", step.Kind, step.TargetID, err)
			}

			return &CascadeError{Step: step, Err: err}
		}
	}

	if err := cascade.Commit(); err != nil {
		if len(steps) == 1 {
			return fmt.Errorf("committing %s: %w", steps[0].Kind, err)
		}

		return &CascadeError{Step: Step{Kind: stepCommit}, Err: err}
	}

	return nil
}

func applyStep(ctx context.Context, tx CascadeTx, step Step) error {
	switch step.Kind {
	case StepSetActive:
		return tx.SetActive(ctx, step.TargetID, step.Active)
	case StepDeleteBudget:
		return tx.DeleteBudget(ctx, step.TargetID)
	case StepDeleteCategory:
		return tx.DeleteCategory(ctx, step.TargetID)
	}

	return fmt.Errorf("unknown step %q", step.Kind)
}

func (s *Service) ensureUnique(ctx context.Context, c *Category, excludingID *uuid.UUID) error {
	owner := c.OwnerUserID

	existing, err := s.repo.ListCategories(ctx, ListFilter{OwnerUserID: &owner})
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}

	records := make([]guard.Record[string], len(existing))
	for i, e := range existing {
		records[i] = guard.Record[string]{ID: e.ID, Key: NormalizeName(e.Name), ScopeUserID: e.OwnerUserID}
	}

	dup, found := guard.FindConflict(NormalizeName(c.Name), owner, excludingID, records)
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

func validate(c *Category) error {
	var verrs validation.Errors

	if c.Name == "" {
		verrs.Add("name", "is required")
	}

	if len(c.Name) > 64 {
		verrs.Add("name", "must be at most 64 characters")
	}

	if !c.Kind.Valid() {
		verrs.Add("kind", "must be income or expense")
	}

	if !colorPattern.MatchString(c.Color) {
		verrs.Add("color", "must be a #rrggbb hex color")
	}

	return verrs.Err()
}
