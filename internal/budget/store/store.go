package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectBudgetColumns = `
	b.id, b.owner_user_id, b.category_id, c.name AS category_name,
	b.amount_limit, b.period, b.created_at, b.updated_at
`

const budgetFrom = ` FROM budgets b JOIN categories c ON c.id = b.category_id`

func scanBudget(s scanner) (*budget.Budget, error) {
	var b budget.Budget

	var period string

	if err := s.Scan(
		&b.ID, &b.OwnerUserID, &b.CategoryID, &b.CategoryName,
		&b.AmountLimit, &period, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	b.Period = budget.Period(period)

	return &b, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return budget.ErrDuplicate
	}

	return err
}

func (s *Store) CreateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (owner_user_id, category_id, amount_limit, period, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, b.OwnerUserID, b.CategoryID, b.AmountLimit, b.Period).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating budget: %w", mapWriteError(err))
	}

	return nil
}

func (s *Store) GetBudget(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + budgetFrom + ` WHERE b.id = $1`

	b, err := scanBudget(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget: %w", err)
	}

	return b, nil
}

func (s *Store) FindBudget(ctx context.Context, ownerUserID, categoryID uuid.UUID) (*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + budgetFrom + ` WHERE b.owner_user_id = $1 AND b.category_id = $2`

	b, err := scanBudget(s.db.QueryRowContext(ctx, query, ownerUserID, categoryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding budget: %w", err)
	}

	return b, nil
}

func (s *Store) ListBudgets(ctx context.Context, filter budget.ListFilter) ([]*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + budgetFrom + ` WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.OwnerUserID != nil {
		query += fmt.Sprintf(" AND b.owner_user_id = $%d", argIdx)

		args = append(args, *filter.OwnerUserID)
		argIdx++
	}

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND b.category_id = $%d", argIdx)

		args = append(args, *filter.CategoryID)
		argIdx++
	}

	query += " ORDER BY c.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*budget.Budget

	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}

		budgets = append(budgets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budgets: %w", err)
	}

	return budgets, nil
}

func (s *Store) UpdateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		UPDATE budgets
		SET category_id = $1, amount_limit = $2, period = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, b.CategoryID, b.AmountLimit, b.Period, b.ID).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return budget.ErrNotFound
		}

		return fmt.Errorf("updating budget: %w", mapWriteError(err))
	}

	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	if n == 0 {
		return budget.ErrNotFound
	}

	return nil
}

func (s *Store) ListSpend(ctx context.Context, filter budget.SpendFilter) ([]budget.Spend, error) {
	query := `
		SELECT id, amount FROM transactions
		WHERE owner_user_id = $1 AND category_id = $2 AND kind = 'expense'
		  AND date >= $3 AND date <= $4
	`

	rows, err := s.db.QueryContext(ctx, query, filter.OwnerUserID, filter.CategoryID, filter.Start, filter.End)
	if err != nil {
		return nil, fmt.Errorf("listing spend: %w", err)
	}
	defer rows.Close()

	var spend []budget.Spend

	for rows.Next() {
		var sp budget.Spend
		if err := rows.Scan(&sp.TransactionID, &sp.Amount); err != nil {
			return nil, fmt.Errorf("scanning spend: %w", err)
		}

		spend = append(spend, sp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spend: %w", err)
	}

	return spend, nil
}
