package category

import (
	"fmt"

	"github.com/google/uuid"
)

// LifecycleAction is the outcome of a delete request.
type LifecycleAction string

const (
	ActionDeactivate LifecycleAction = "deactivate"
	ActionHardDelete LifecycleAction = "hard_delete"
)

type StepKind string

const (
	StepSetActive      StepKind = "set_active"
	StepDeleteBudget   StepKind = "delete_budget"
	StepDeleteCategory StepKind = "delete_category"
)

// Step is one repository write needed to carry out a lifecycle decision.
type Step struct {
	Kind     StepKind
	TargetID uuid.UUID
	Active   bool // only for StepSetActive
}

type LifecycleDecision struct {
	Action           LifecycleAction
	Steps            []Step
	Message          string
	TransactionCount int
	BudgetsRemoved   int
}

// ResolveDelete decides how a category is removed. A category referenced by
// any transaction is only deactivated and keeps its budgets. Otherwise its
// budgets are deleted first, then the category itself.
func ResolveDelete(c Category, dependentTransactionCount int, dependentBudgets []BudgetRef) LifecycleDecision {
	if dependentTransactionCount > 0 {
		return LifecycleDecision{
			Action:           ActionDeactivate,
			Steps:            []Step{{Kind: StepSetActive, TargetID: c.ID, Active: false}},
			TransactionCount: dependentTransactionCount,
			Message: fmt.Sprintf("Category %q has %d %s and was deactivated to keep its history.",
				c.Name, dependentTransactionCount, plural(dependentTransactionCount, "transaction", "transactions")),
		}
	}

	if len(dependentBudgets) > 0 {
		steps := make([]Step, 0, len(dependentBudgets)+1)
		for _, b := range dependentBudgets {
			steps = append(steps, Step{Kind: StepDeleteBudget, TargetID: b.ID})
		}

		steps = append(steps, Step{Kind: StepDeleteCategory, TargetID: c.ID})

		return LifecycleDecision{
			Action:         ActionHardDelete,
			Steps:          steps,
			BudgetsRemoved: len(dependentBudgets),
			Message: fmt.Sprintf("Category %q was deleted along with %d %s.",
				c.Name, len(dependentBudgets), plural(len(dependentBudgets), "budget", "budgets")),
		}
	}

	return LifecycleDecision{
		Action:  ActionHardDelete,
		Steps:   []Step{{Kind: StepDeleteCategory, TargetID: c.ID}},
		Message: fmt.Sprintf("Category %q was deleted.", c.Name),
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
