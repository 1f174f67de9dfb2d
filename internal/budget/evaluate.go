package budget

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

// Action is the tier of a budget decision.
type Action string

const (
	ActionAllow            Action = "allow"
	ActionAllowWithWarning Action = "allow_with_warning"
	ActionBlock            Action = "block"
)

// Severity orders actions from most to least permissive.
func (a Action) Severity() int {
	switch a {
	case ActionAllowWithWarning:
		return 1
	case ActionBlock:
		return 2
	}

	return 0
}

type Reason string

const (
	ReasonNoBudgetConfigured Reason = "no_budget_configured"
	ReasonWithinBudget       Reason = "within_budget"
	ReasonApproachingLimit   Reason = "approaching_limit"
	ReasonCriticalThreshold  Reason = "critical_threshold"
	ReasonOverBudget         Reason = "over_budget"
	ReasonLookupFailed       Reason = "lookup_failed"
	ReasonNotAnExpense       Reason = "not_an_expense"
)

var (
	hundred = decimal.NewFromInt(100)

	// Thresholds are inclusive.
	CriticalPercentage = decimal.NewFromInt(90)
	WarningPercentage  = decimal.NewFromInt(70)
)

// Candidate is a not-yet-persisted expense being checked against its budget.
type Candidate struct {
	CategoryID  uuid.UUID
	OwnerUserID uuid.UUID
	Amount      decimal.Decimal
	Date        time.Time

	// ExcludingTransactionID is set when editing, so the row's previous amount
	// is not counted twice.
	ExcludingTransactionID *uuid.UUID
}

func (c Candidate) Validate() error {
	if c.CategoryID == uuid.Nil {
		return errors.Join(ErrInvalidCandidate, validation.New("category_id", "is required"))
	}

	if !c.Amount.IsPositive() {
		return errors.Join(ErrInvalidCandidate, validation.New("amount", "must be greater than zero"))
	}

	return nil
}

// Spend is one prior expense counted against the budget.
type Spend struct {
	TransactionID uuid.UUID
	Amount        decimal.Decimal
}

type Decision struct {
	Action         Action
	Reason         Reason
	CategoryName   string
	Period         Period
	BudgetLimit    decimal.Decimal
	CurrentSpent   decimal.Decimal
	NewAmount      decimal.Decimal
	ProjectedTotal decimal.Decimal
	PercentageUsed decimal.Decimal
	Remaining      decimal.Decimal
	ExceedsBy      decimal.Decimal
}

func (d Decision) Blocked() bool { return d.Action == ActionBlock }

func (d Decision) Message() string {
	switch d.Reason {
	case ReasonOverBudget:
		return fmt.Sprintf("This expense exceeds the %s budget for %q by %s (limit %s, already spent %s).",
			d.Period, d.CategoryName, d.ExceedsBy.StringFixed(2), d.BudgetLimit.StringFixed(2), d.CurrentSpent.StringFixed(2))
	case ReasonCriticalThreshold:
		return fmt.Sprintf("%s%% of the %q budget will be used, %s left.",
			d.PercentageUsed.StringFixed(1), d.CategoryName, d.Remaining.StringFixed(2))
	case ReasonApproachingLimit:
		return fmt.Sprintf("Approaching the %q budget: %s%% used, %s left.",
			d.CategoryName, d.PercentageUsed.StringFixed(1), d.Remaining.StringFixed(2))
	case ReasonWithinBudget:
		return fmt.Sprintf("Within budget for %q.", d.CategoryName)
	case ReasonLookupFailed:
		return "Budget could not be checked; the transaction was allowed."
	case ReasonNotAnExpense:
		return "Income is not checked against budgets."
	}

	return "No budget configured for this category."
}

// Evaluate decides whether a candidate expense fits the budget. priorSpend must
// already be limited to expenses of the same owner and category inside the
// budget's current period. A nil budget always allows.
func Evaluate(c Candidate, b *Budget, priorSpend []Spend) (Decision, error) {
	if err := c.Validate(); err != nil {
		return Decision{}, err
	}

	if b == nil {
		return Decision{
			Action:    ActionAllow,
			Reason:    ReasonNoBudgetConfigured,
			NewAmount: c.Amount,
		}, nil
	}

	if !b.AmountLimit.IsPositive() {
		return Decision{}, fmt.Errorf("budget %s has a non-positive limit", b.ID)
	}

	currentSpent := decimal.Zero

	for _, s := range priorSpend {
		if c.ExcludingTransactionID != nil && s.TransactionID == *c.ExcludingTransactionID {
			continue
		}

		currentSpent = currentSpent.Add(s.Amount)
	}

	projected := currentSpent.Add(c.Amount)

	d := Decision{
		CategoryName:   b.CategoryName,
		Period:         b.Period,
		BudgetLimit:    b.AmountLimit,
		CurrentSpent:   currentSpent,
		NewAmount:      c.Amount,
		ProjectedTotal: projected,
		PercentageUsed: projected.Mul(hundred).Div(b.AmountLimit),
		Remaining:      b.AmountLimit.Sub(projected),
	}

	switch {
	case projected.GreaterThan(b.AmountLimit):
		d.Action = ActionBlock
		d.Reason = ReasonOverBudget
		d.ExceedsBy = projected.Sub(b.AmountLimit)
	case d.PercentageUsed.GreaterThanOrEqual(CriticalPercentage):
		d.Action = ActionAllowWithWarning
		d.Reason = ReasonCriticalThreshold
	case d.PercentageUsed.GreaterThanOrEqual(WarningPercentage):
		d.Action = ActionAllowWithWarning
		d.Reason = ReasonApproachingLimit
	default:
		d.Action = ActionAllow
		d.Reason = ReasonWithinBudget
	}

	return d, nil
}

// FailOpen is the decision used when the budget or spend lookup failed.
func FailOpen(c Candidate) Decision {
	return Decision{Action: ActionAllow, Reason: ReasonLookupFailed, NewAmount: c.Amount}
}

// NotApplicable is the decision for income, which budgets never limit.
func NotApplicable(amount decimal.Decimal) Decision {
	return Decision{Action: ActionAllow, Reason: ReasonNotAnExpense, NewAmount: amount}
}
