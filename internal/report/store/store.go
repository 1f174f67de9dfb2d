package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/report"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// where renders the filter as a WHERE clause over transactions aliased t.
func where(filter report.Filter) (string, []any) {
	clause := ` WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.OwnerUserID != nil {
		clause += fmt.Sprintf(" AND t.owner_user_id = $%d", argIdx)

		args = append(args, *filter.OwnerUserID)
		argIdx++
	}

	if filter.StartDate != nil {
		clause += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		clause += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	return clause, args
}

func (s *Store) Totals(ctx context.Context, filter report.Filter) (decimal.Decimal, decimal.Decimal, error) {
	clause, args := where(filter)

	query := `
		SELECT
			COALESCE(SUM(t.amount) FILTER (WHERE t.kind = 'income'), 0),
			COALESCE(SUM(t.amount) FILTER (WHERE t.kind = 'expense'), 0)
		FROM transactions t` + clause

	var income, expenses decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&income, &expenses); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("summing transactions: %w", err)
	}

	return income, expenses, nil
}

func (s *Store) ExpensesByCategory(ctx context.Context, filter report.Filter) ([]report.CategoryAmount, error) {
	clause, args := where(filter)

	query := `
		SELECT c.id, c.name, c.color, SUM(t.amount)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id` + clause + ` AND t.kind = 'expense'
		GROUP BY c.id, c.name, c.color
		ORDER BY SUM(t.amount) DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("grouping expenses: %w", err)
	}
	defer rows.Close()

	var out []report.CategoryAmount

	for rows.Next() {
		var ca report.CategoryAmount
		if err := rows.Scan(&ca.CategoryID, &ca.Name, &ca.Color, &ca.Amount); err != nil {
			return nil, fmt.Errorf("scanning category amount: %w", err)
		}

		out = append(out, ca)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category amounts: %w", err)
	}

	return out, nil
}

func (s *Store) MonthlyTotals(ctx context.Context, filter report.Filter) ([]report.MonthTotals, error) {
	clause, args := where(filter)

	query := `
		SELECT
			TO_CHAR(t.date, 'YYYY-MM') AS month,
			COALESCE(SUM(t.amount) FILTER (WHERE t.kind = 'income'), 0),
			COALESCE(SUM(t.amount) FILTER (WHERE t.kind = 'expense'), 0)
		FROM transactions t` + clause + `
		GROUP BY month
		ORDER BY month ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("grouping by month: %w", err)
	}
	defer rows.Close()

	var out []report.MonthTotals

	for rows.Next() {
		var mt report.MonthTotals
		if err := rows.Scan(&mt.Month, &mt.Income, &mt.Expenses); err != nil {
			return nil, fmt.Errorf("scanning month totals: %w", err)
		}

		out = append(out, mt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating month totals: %w", err)
	}

	return out, nil
}
