package category

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
)

type categoryResponse struct {
	ID          uuid.UUID     `json:"id"`
	OwnerUserID uuid.UUID     `json:"owner_user_id"`
	Name        string        `json:"name"`
	Kind        category.Kind `json:"kind"`
	Color       string        `json:"color"`
	Active      bool          `json:"active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		OwnerUserID: c.OwnerUserID,
		Name:        c.Name,
		Kind:        c.Kind,
		Color:       c.Color,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toResponseList(cats []*category.Category) []categoryResponse {
	resp := make([]categoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = toResponse(c)
	}

	return resp
}

type stepResponse struct {
	Kind     category.StepKind `json:"kind"`
	TargetID uuid.UUID         `json:"target_id"`
}

type decisionResponse struct {
	Action           category.LifecycleAction `json:"action"`
	Message          string                   `json:"message"`
	TransactionCount int                      `json:"transaction_count"`
	BudgetsRemoved   int                      `json:"budgets_removed"`
	Steps            []stepResponse           `json:"steps"`
}

func toDecisionResponse(d category.LifecycleDecision) decisionResponse {
	steps := make([]stepResponse, len(d.Steps))
	for i, s := range d.Steps {
		steps[i] = stepResponse{Kind: s.Kind, TargetID: s.TargetID}
	}

	return decisionResponse{
		Action:           d.Action,
		Message:          d.Message,
		TransactionCount: d.TransactionCount,
		BudgetsRemoved:   d.BudgetsRemoved,
		Steps:            steps,
	}
}
