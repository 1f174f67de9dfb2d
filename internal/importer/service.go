package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/importer/statement"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer
type Transactions interface {
	Create(ctx context.Context, actor user.Actor, params transaction.CreateParams) (*transaction.Transaction, budget.Decision, error)
	FindDuplicates(ctx context.Context, actor user.Actor, owner uuid.UUID, params []transaction.CreateParams) ([]*transaction.Transaction, error)
}

// Describer suggests a cleaner description for a raw statement line.
type Describer interface {
	Suggest(ctx context.Context, owner uuid.UUID, rawDescription string) (string, error)
}

type Service struct {
	transactions Transactions
	describer    Describer
}

// NewService builds an importer. describer may be nil, in which case rows keep
// their statement description.
func NewService(transactions Transactions, describer Describer) *Service {
	return &Service{transactions: transactions, describer: describer}
}

// Import parses a statement and records every new row through the regular
// transaction path, so each expense is checked against its budget with the
// rows imported before it already counted. Blocked rows are never overridden.
func (s *Service) Import(ctx context.Context, actor user.Actor, params Params) (*Result, error) {
	if params.Reader == nil {
		return nil, validation.New("file", "is required")
	}

	owner, err := actor.TargetOwner(params.OwnerUserID)
	if err != nil {
		return nil, err
	}

	stmt, err := statement.Parse(params.Reader, params.Profile)
	if err != nil {
		return nil, validation.New("file", err.Error())
	}

	if err := validateCategories(stmt.Rows, params); err != nil {
		return nil, err
	}

	creates := make([]transaction.CreateParams, len(stmt.Rows))

	for i, row := range stmt.Rows {
		categoryID := params.ExpenseCategoryID
		if row.Type == transaction.TypeIncome {
			categoryID = params.IncomeCategoryID
		}

		creates[i] = transaction.CreateParams{
			OwnerUserID:    owner,
			CategoryID:     categoryID,
			Amount:         row.Amount,
			Type:           row.Type,
			Description:    s.describe(ctx, owner, row.Description),
			RawDescription: row.Description,
			Date:           row.Date,
		}
	}

	existing, err := s.transactions.FindDuplicates(ctx, actor, owner, creates)
	if err != nil {
		return nil, fmt.Errorf("checking duplicates: %w", err)
	}

	result := &Result{Profile: stmt.Profile, Charset: stmt.Charset}

	for i, row := range stmt.Rows {
		if i < len(existing) && existing[i] != nil {
			result.Duplicates = append(result.Duplicates, Duplicate{Line: row.Line, Row: row, Existing: existing[i]})
			continue
		}

		tx, decision, err := s.transactions.Create(ctx, actor, creates[i])

		var blocked *transaction.BlockedError
		if errors.As(err, &blocked) {
			result.Blocked = append(result.Blocked, Blocked{Line: row.Line, Row: row, Decision: blocked.Decision})
			continue
		}

		if err != nil {
			slog.Error("failed to import statement row", "line", row.Line, "imported", len(result.Imported), "error", err)
			return result, &RowError{Line: row.Line, Err: err}
		}

		imported := Imported{Line: row.Line, Transaction: tx, Decision: decision}
		result.Imported = append(result.Imported, imported)

		if decision.Action == budget.ActionAllowWithWarning {
			result.Warnings = append(result.Warnings, imported)
		}
	}

	return result, nil
}

func (s *Service) describe(ctx context.Context, owner uuid.UUID, raw string) string {
	if s.describer == nil {
		return raw
	}

	preferred, err := s.describer.Suggest(ctx, owner, raw)
	if err != nil {
		slog.Warn("failed to suggest description", "raw_description", raw, "error", err)
		return raw
	}

	if preferred == "" {
		return raw
	}

	return preferred
}

func validateCategories(rows []statement.Row, params Params) error {
	var hasExpense, hasIncome bool

	for _, row := range rows {
		switch row.Type {
		case transaction.TypeExpense:
			hasExpense = true
		case transaction.TypeIncome:
			hasIncome = true
		}
	}

	var verrs validation.Errors

	if hasExpense && params.ExpenseCategoryID == uuid.Nil {
		verrs.Add("expense_category_id", "is required for statements with expenses")
	}

	if hasIncome && params.IncomeCategoryID == uuid.Nil {
		verrs.Add("income_category_id", "is required for statements with income")
	}

	return verrs.Err()
}
