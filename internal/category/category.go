package category

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("category not found")
	ErrDuplicate           = errors.New("category already exists")
	ErrInconsistentCascade = errors.New("category cascade incomplete")
)

// Kind is shared with transactions: a category only accepts transactions of its kind.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

const DefaultColor = "#4f8ef7"

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Category is owned by a single user. Inactive categories are kept for
// history but hidden from pickers for new transactions.
type Category struct {
	ID          uuid.UUID
	OwnerUserID uuid.UUID
	Name        string
	Kind        Kind
	Color       string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// BudgetRef identifies a budget that depends on a category.
type BudgetRef struct {
	ID          uuid.UUID
	OwnerUserID uuid.UUID
}

// NormalizeName is the duplicate-detection key for a category name.
// Comparison stays case-sensitive: "Food" and "food" are different categories.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// DuplicateError reports the active category that already uses the name.
type DuplicateError struct {
	Existing *Category
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("category %q already exists", e.Existing.Name)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// CascadeError is returned when a step of a delete cascade failed. The whole
// cascade is rolled back, so the category is still present.
type CascadeError struct {
	Step Step
	Err  error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("category cascade failed at %s %s: %v", e.Step.Kind, e.Step.TargetID, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

func (e *CascadeError) Is(target error) bool {
	return target == ErrInconsistentCascade
}
