package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter restricts a report to one owner and an inclusive date range. Nil
// bounds are open.
type Filter struct {
	OwnerUserID *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}

type Summary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

type CategoryAmount struct {
	CategoryID uuid.UUID
	Name       string
	Color      string
	Amount     decimal.Decimal
}

// MonthTotals holds the totals of one calendar month, keyed "YYYY-MM".
type MonthTotals struct {
	Month    string
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

type Overview struct {
	Summary    Summary
	ByCategory []CategoryAmount
	Monthly    []MonthTotals
}
