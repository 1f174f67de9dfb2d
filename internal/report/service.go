package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=report
type Repository interface {
	Totals(ctx context.Context, filter Filter) (income, expenses decimal.Decimal, err error)
	ExpensesByCategory(ctx context.Context, filter Filter) ([]CategoryAmount, error)
	MonthlyTotals(ctx context.Context, filter Filter) ([]MonthTotals, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Summary(ctx context.Context, actor user.Actor, filter Filter) (Summary, error) {
	filter.OwnerUserID = actor.ScopeOwner(filter.OwnerUserID)

	income, expenses, err := s.repo.Totals(ctx, filter)
	if err != nil {
		return Summary{}, fmt.Errorf("computing totals: %w", err)
	}

	return Summary{Income: income, Expenses: expenses, Balance: income.Sub(expenses)}, nil
}

// ExpensesByCategory returns expense totals per category, largest first.
func (s *Service) ExpensesByCategory(ctx context.Context, actor user.Actor, filter Filter) ([]CategoryAmount, error) {
	filter.OwnerUserID = actor.ScopeOwner(filter.OwnerUserID)

	out, err := s.repo.ExpensesByCategory(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("computing expenses by category: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})

	return out, nil
}

// MonthlyEvolution returns income and expense totals per month, oldest first.
func (s *Service) MonthlyEvolution(ctx context.Context, actor user.Actor, filter Filter) ([]MonthTotals, error) {
	filter.OwnerUserID = actor.ScopeOwner(filter.OwnerUserID)

	out, err := s.repo.MonthlyTotals(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("computing monthly totals: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})

	return out, nil
}

func (s *Service) Overview(ctx context.Context, actor user.Actor, filter Filter) (*Overview, error) {
	var o Overview

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		o.Summary, err = s.Summary(gctx, actor, filter)

		return err
	})

	g.Go(func() error {
		var err error
		o.ByCategory, err = s.ExpensesByCategory(gctx, actor, filter)

		return err
	})

	g.Go(func() error {
		var err error
		o.Monthly, err = s.MonthlyEvolution(gctx, actor, filter)

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &o, nil
}
