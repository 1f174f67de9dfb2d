package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
)

var (
	ErrNotFound   = errors.New("transaction not found")
	ErrOverBudget = errors.New("transaction exceeds budget")
)

// Type represents the type of transaction (income or expense).
// It must match the kind of the transaction's category.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction represents a financial transaction.
type Transaction struct {
	ID             uuid.UUID
	OwnerUserID    uuid.UUID
	CategoryID     uuid.UUID
	CategoryName   string // Loaded via JOIN
	Amount         decimal.Decimal
	Type           Type
	Description    string
	RawDescription string
	Date           time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// BlockedError is returned when an expense would exceed its budget and the
// caller did not confirm the override. Nothing was written.
type BlockedError struct {
	Decision budget.Decision
}

func (e *BlockedError) Error() string {
	return e.Decision.Message()
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrOverBudget
}
