package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectCategoryColumns = `id, owner_user_id, name, kind, color, active, created_at, updated_at`

func scanCategory(s scanner) (*category.Category, error) {
	var c category.Category

	var kind string

	if err := s.Scan(&c.ID, &c.OwnerUserID, &c.Name, &kind, &c.Color, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	c.Kind = category.Kind(kind)

	return &c, nil
}

// mapWriteError turns the partial unique index on active names into ErrDuplicate,
// covering writes that raced past the service check.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return category.ErrDuplicate
	}

	return err
}

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (owner_user_id, name, kind, color, active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, c.OwnerUserID, c.Name, c.Kind, c.Color, c.Active).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating category: %w", mapWriteError(err))
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM categories WHERE id = $1`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, filter category.ListFilter) ([]*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM categories WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.OwnerUserID != nil {
		query += fmt.Sprintf(" AND owner_user_id = $%d", argIdx)

		args = append(args, *filter.OwnerUserID)
		argIdx++
	}

	if filter.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argIdx)

		args = append(args, *filter.Kind)
		argIdx++
	}

	if !filter.IncludeInactive {
		query += " AND active"
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []*category.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return categories, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories
		SET name = $1, kind = $2, color = $3, active = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, c.Name, c.Kind, c.Color, c.Active, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return category.ErrNotFound
		}

		return fmt.Errorf("updating category: %w", mapWriteError(err))
	}

	return nil
}

func (s *Store) CountTransactions(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var count int

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}

	return count, nil
}

func (s *Store) ListBudgetRefs(ctx context.Context, categoryID uuid.UUID) ([]category.BudgetRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_user_id FROM budgets WHERE category_id = $1 ORDER BY created_at ASC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var refs []category.BudgetRef

	for rows.Next() {
		var ref category.BudgetRef
		if err := rows.Scan(&ref.ID, &ref.OwnerUserID); err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}

		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budgets: %w", err)
	}

	return refs, nil
}

type cascadeTx struct {
	tx *sql.Tx
}

func (s *Store) BeginCascade(ctx context.Context) (category.CascadeTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning cascade tx: %w", err)
	}

	return &cascadeTx{tx: dbTx}, nil
}

func (ct *cascadeTx) Commit() error   { return ct.tx.Commit() }
func (ct *cascadeTx) Rollback() error { return ct.tx.Rollback() }

func (ct *cascadeTx) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return execOne(ctx, ct.tx, `UPDATE categories SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
}

func (ct *cascadeTx) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, ct.tx, `DELETE FROM budgets WHERE id = $1`, id)
}

func (ct *cascadeTx) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, ct.tx, `DELETE FROM categories WHERE id = $1`, id)
}

// execOne fails unless exactly one row was affected, so a step racing a
// concurrent delete aborts the cascade.
func execOne(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n != 1 {
		return fmt.Errorf("expected 1 row affected, got %d", n)
	}

	return nil
}
