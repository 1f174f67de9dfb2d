package budget

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("budget not found")
	ErrDuplicate        = errors.New("budget already exists for category")
	ErrInvalidCandidate = errors.New("invalid candidate transaction")
)

// Period is the window a budget limit applies to.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

func (p Period) Valid() bool {
	return p == PeriodMonthly || p == PeriodYearly
}

// Window returns the first and last calendar day of the period containing ref.
func (p Period) Window(ref time.Time) (time.Time, time.Time) {
	ref = ref.UTC()

	switch p {
	case PeriodYearly:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, -1)
	default:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	}
}

// Budget caps spending for one owner's expense category.
type Budget struct {
	ID           uuid.UUID
	OwnerUserID  uuid.UUID
	CategoryID   uuid.UUID
	CategoryName string // denormalized for display
	AmountLimit  decimal.Decimal
	Period       Period
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// DuplicateError reports the budget that already covers the requested category.
type DuplicateError struct {
	Existing *Budget
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("a %s budget of %s already exists for category %q",
		e.Existing.Period, e.Existing.AmountLimit.StringFixed(2), e.Existing.CategoryName)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
