package notify_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/notify"
)

func TestEventFor(t *testing.T) {
	owner, cat, tx := uuid.New(), uuid.New(), uuid.New()
	at := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		decision budget.Decision
		wantType notify.EventType
		wantOK   bool
	}{
		{
			name:     "Warning",
			decision: budget.Decision{Action: budget.ActionAllowWithWarning, Reason: budget.ReasonApproachingLimit},
			wantType: notify.EventBudgetWarning,
			wantOK:   true,
		},
		{
			name:     "ConfirmedOverride",
			decision: budget.Decision{Action: budget.ActionBlock, Reason: budget.ReasonOverBudget},
			wantType: notify.EventBudgetOverride,
			wantOK:   true,
		},
		{
			name:     "PlainAllow",
			decision: budget.Decision{Action: budget.ActionAllow, Reason: budget.ReasonWithinBudget},
		},
		{
			name:     "LookupFailed",
			decision: budget.FailOpen(budget.Candidate{Amount: decimal.NewFromInt(5)}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := notify.EventFor(tt.decision, owner, cat, tx, at)

			assert.Equal(t, tt.wantOK, ok)

			if !ok {
				return
			}

			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tx, got.TransactionID)
			assert.Equal(t, tt.decision.Message(), got.Message)
		})
	}
}

func TestEvent_JSON(t *testing.T) {
	e := notify.Event{
		Type:           notify.EventBudgetOverride,
		OwnerUserID:    uuid.New(),
		Action:         budget.ActionBlock,
		ProjectedTotal: decimal.RequireFromString("1050.00"),
		OccurredAt:     time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}

	body, err := e.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"type":"budget.override"`)
	assert.Contains(t, string(body), `"projected_total":"1050"`)

	back, err := notify.EventFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, e.OwnerUserID, back.OwnerUserID)
	assert.True(t, e.ProjectedTotal.Equal(back.ProjectedTotal))
}
