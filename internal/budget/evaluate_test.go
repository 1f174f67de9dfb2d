package budget_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func monthly(limit string) *budget.Budget {
	return &budget.Budget{
		ID:           uuid.New(),
		CategoryID:   uuid.New(),
		CategoryName: "Groceries",
		AmountLimit:  dec(limit),
		Period:       budget.PeriodMonthly,
	}
}

func candidate(b *budget.Budget, amount string) budget.Candidate {
	return budget.Candidate{
		CategoryID:  b.CategoryID,
		OwnerUserID: b.OwnerUserID,
		Amount:      dec(amount),
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func spent(amounts ...string) []budget.Spend {
	out := make([]budget.Spend, len(amounts))
	for i, a := range amounts {
		out[i] = budget.Spend{TransactionID: uuid.New(), Amount: dec(a)}
	}

	return out
}

func TestEvaluate(t *testing.T) {
	b := monthly("1000")

	type testCase struct {
		name          string
		amount        string
		prior         []budget.Spend
		wantAction    budget.Action
		wantReason    budget.Reason
		wantPercent   string
		wantRemaining string
		wantExceeds   string
	}

	tests := []testCase{
		{
			name:          "ApproachingLimit",
			amount:        "100",
			prior:         spent("400", "250"),
			wantAction:    budget.ActionAllowWithWarning,
			wantReason:    budget.ReasonApproachingLimit,
			wantPercent:   "75",
			wantRemaining: "250",
			wantExceeds:   "0",
		},
		{
			name:          "CriticalThreshold",
			amount:        "260",
			prior:         spent("650"),
			wantAction:    budget.ActionAllowWithWarning,
			wantReason:    budget.ReasonCriticalThreshold,
			wantPercent:   "91",
			wantRemaining: "90",
			wantExceeds:   "0",
		},
		{
			name:          "OverBudget",
			amount:        "150",
			prior:         spent("900"),
			wantAction:    budget.ActionBlock,
			wantReason:    budget.ReasonOverBudget,
			wantPercent:   "105",
			wantRemaining: "-50",
			wantExceeds:   "50",
		},
		{
			name:          "ExactlyAtLimitIsCritical",
			amount:        "100",
			prior:         spent("900"),
			wantAction:    budget.ActionAllowWithWarning,
			wantReason:    budget.ReasonCriticalThreshold,
			wantPercent:   "100",
			wantRemaining: "0",
			wantExceeds:   "0",
		},
		{
			name:          "SeventyIsInclusive",
			amount:        "700",
			wantAction:    budget.ActionAllowWithWarning,
			wantReason:    budget.ReasonApproachingLimit,
			wantPercent:   "70",
			wantRemaining: "300",
			wantExceeds:   "0",
		},
		{
			name:          "JustBelowSeventy",
			amount:        "699.99",
			wantAction:    budget.ActionAllow,
			wantReason:    budget.ReasonWithinBudget,
			wantPercent:   "69.999",
			wantRemaining: "300.01",
			wantExceeds:   "0",
		},
		{
			name:          "OneCentOver",
			amount:        "0.01",
			prior:         spent("1000"),
			wantAction:    budget.ActionBlock,
			wantReason:    budget.ReasonOverBudget,
			wantPercent:   "100.001",
			wantRemaining: "-0.01",
			wantExceeds:   "0.01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := budget.Evaluate(candidate(b, tt.amount), b, tt.prior)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAction, got.Action)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.Equal(t, "Groceries", got.CategoryName)
			assertDecimal(t, tt.wantPercent, got.PercentageUsed, "percentage")
			assertDecimal(t, tt.wantRemaining, got.Remaining, "remaining")
			assertDecimal(t, tt.wantExceeds, got.ExceedsBy, "exceedsBy")
			assertDecimal(t, tt.amount, got.NewAmount, "newAmount")
		})
	}
}

func TestEvaluate_OverBudgetCarriesContext(t *testing.T) {
	b := monthly("1000")

	got, err := budget.Evaluate(candidate(b, "150"), b, spent("500", "400"))
	require.NoError(t, err)

	assert.True(t, got.Blocked())
	assertDecimal(t, "1000", got.BudgetLimit, "limit")
	assertDecimal(t, "900", got.CurrentSpent, "currentSpent")
	assertDecimal(t, "1050", got.ProjectedTotal, "projected")
	assert.Contains(t, got.Message(), "exceeds")
	assert.Contains(t, got.Message(), "50.00")
}

func TestEvaluate_NoBudgetAlwaysAllows(t *testing.T) {
	c := budget.Candidate{CategoryID: uuid.New(), OwnerUserID: uuid.New()}

	for _, amount := range []string{"0.01", "1", "999999999.99"} {
		c.Amount = dec(amount)

		got, err := budget.Evaluate(c, nil, spent("1000000"))
		require.NoError(t, err)

		assert.Equal(t, budget.ActionAllow, got.Action, amount)
		assert.Equal(t, budget.ReasonNoBudgetConfigured, got.Reason, amount)
	}
}

func TestEvaluate_InvalidCandidate(t *testing.T) {
	b := monthly("1000")

	tests := map[string]budget.Candidate{
		"ZeroAmount":     {CategoryID: b.CategoryID, Amount: decimal.Zero},
		"NegativeAmount": {CategoryID: b.CategoryID, Amount: dec("-5")},
		"NoCategory":     {Amount: dec("5")},
	}

	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := budget.Evaluate(c, b, nil)

			assert.ErrorIs(t, err, budget.ErrInvalidCandidate)
			assert.True(t, validation.Is(err))
		})
	}
}

func TestEvaluate_NonPositiveLimit(t *testing.T) {
	b := monthly("0")

	_, err := budget.Evaluate(candidate(b, "10"), b, nil)
	assert.Error(t, err)
}

func TestEvaluate_SeverityMonotonicInAmount(t *testing.T) {
	b := monthly("500")
	prior := spent("120", "80")

	last := -1

	for cents := int64(1); cents <= 60000; cents += 137 {
		c := candidate(b, decimal.New(cents, -2).String())

		got, err := budget.Evaluate(c, b, prior)
		require.NoError(t, err)

		sev := got.Action.Severity()
		require.GreaterOrEqual(t, sev, last, "severity dropped at amount %s", c.Amount)

		last = sev
	}

	assert.Equal(t, budget.ActionBlock.Severity(), last)
}

func TestEvaluate_EditExcludesOwnRow(t *testing.T) {
	b := monthly("1000")
	prior := spent("300", "200")
	edited := prior[1]

	c := candidate(b, "200")
	c.ExcludingTransactionID = &edited.TransactionID

	got, err := budget.Evaluate(c, b, prior)
	require.NoError(t, err)

	// re-saving the row unchanged is evaluated as if it were the only new spend
	assertDecimal(t, "300", got.CurrentSpent, "currentSpent")
	assertDecimal(t, "500", got.ProjectedTotal, "projected")
	assert.Equal(t, budget.ReasonWithinBudget, got.Reason)
}

func TestPeriod_Window(t *testing.T) {
	ref := time.Date(2024, 2, 17, 13, 45, 0, 0, time.UTC)

	start, end := budget.PeriodMonthly.Window(ref)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), end)

	start, end = budget.PeriodYearly.Window(ref)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), end)

	start, end = budget.PeriodMonthly.Window(time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), end)
}
