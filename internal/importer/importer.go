package importer

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/importer/statement"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
)

// Params describes one statement upload. Profile may be empty to auto-detect.
// Expense rows land in ExpenseCategoryID and income rows in IncomeCategoryID;
// each is only required when the statement has rows of that type.
type Params struct {
	Profile           string
	OwnerUserID       uuid.UUID
	ExpenseCategoryID uuid.UUID
	IncomeCategoryID  uuid.UUID
	Reader            io.Reader
}

type Imported struct {
	Line        int
	Transaction *transaction.Transaction
	Decision    budget.Decision
}

// Blocked is a row the budget refused. It was not written; the user can enter
// it by hand and confirm the override.
type Blocked struct {
	Line     int
	Row      statement.Row
	Decision budget.Decision
}

type Duplicate struct {
	Line     int
	Row      statement.Row
	Existing *transaction.Transaction
}

// Result is what an import did, row by row. Warnings is the subset of
// Imported whose budget decision carried a warning.
type Result struct {
	Profile    string
	Charset    string
	Imported   []Imported
	Warnings   []Imported
	Blocked    []Blocked
	Duplicates []Duplicate
}

// RowError stops an import. Rows before Line were already written.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
