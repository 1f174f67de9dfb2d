// Package notify publishes budget events raised by transaction writes.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
)

type EventType string

const (
	EventBudgetWarning  EventType = "budget.warning"
	EventBudgetOverride EventType = "budget.override"
)

type Event struct {
	Type           EventType       `json:"type"`
	OwnerUserID    uuid.UUID       `json:"owner_user_id"`
	CategoryID     uuid.UUID       `json:"category_id"`
	TransactionID  uuid.UUID       `json:"transaction_id"`
	Action         budget.Action   `json:"action"`
	Reason         budget.Reason   `json:"reason"`
	Message        string          `json:"message"`
	BudgetLimit    decimal.Decimal `json:"budget_limit"`
	ProjectedTotal decimal.Decimal `json:"projected_total"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// EventFor returns the event a persisted write with decision d should raise, if any.
// Only warnings and confirmed overrides are worth telling anyone about.
func EventFor(d budget.Decision, ownerUserID, categoryID, transactionID uuid.UUID, at time.Time) (Event, bool) {
	var t EventType

	switch d.Action {
	case budget.ActionAllowWithWarning:
		t = EventBudgetWarning
	case budget.ActionBlock:
		t = EventBudgetOverride
	default:
		return Event{}, false
	}

	return Event{
		Type:           t,
		OwnerUserID:    ownerUserID,
		CategoryID:     categoryID,
		TransactionID:  transactionID,
		Action:         d.Action,
		Reason:         d.Reason,
		Message:        d.Message(),
		BudgetLimit:    d.BudgetLimit,
		ProjectedTotal: d.ProjectedTotal,
		PercentageUsed: d.PercentageUsed,
		OccurredAt:     at,
	}, true
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}

	return &e, nil
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
