package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/respond"
)

type budgetResponse struct {
	ID           uuid.UUID       `json:"id"`
	OwnerUserID  uuid.UUID       `json:"owner_user_id"`
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	AmountLimit  decimal.Decimal `json:"amount_limit"`
	Period       budget.Period   `json:"period"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(b *budget.Budget) budgetResponse {
	return budgetResponse{
		ID:           b.ID,
		OwnerUserID:  b.OwnerUserID,
		CategoryID:   b.CategoryID,
		CategoryName: b.CategoryName,
		AmountLimit:  b.AmountLimit,
		Period:       b.Period,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

type progressResponse struct {
	Budget            budgetResponse        `json:"budget"`
	WindowStart       respond.Date          `json:"window_start"`
	WindowEnd         respond.Date          `json:"window_end"`
	Spent             decimal.Decimal       `json:"spent"`
	Available         decimal.Decimal       `json:"available"`
	Percentage        decimal.Decimal       `json:"percentage"`
	DisplayPercentage decimal.Decimal       `json:"display_percentage"`
	Exceeded          bool                  `json:"exceeded"`
	Status            budget.ProgressStatus `json:"status"`
}

func toProgressResponse(p budget.Progress) progressResponse {
	return progressResponse{
		Budget:            toResponse(p.Budget),
		WindowStart:       respond.Date{Time: p.WindowStart},
		WindowEnd:         respond.Date{Time: p.WindowEnd},
		Spent:             p.Spent,
		Available:         p.Available,
		Percentage:        p.Percentage,
		DisplayPercentage: p.DisplayPercentage,
		Exceeded:          p.Exceeded,
		Status:            p.Status,
	}
}

// DecisionResponse is the wire form of a budget decision, shared by every
// endpoint that reports one.
type DecisionResponse struct {
	Action         budget.Action   `json:"action"`
	Reason         budget.Reason   `json:"reason"`
	Message        string          `json:"message"`
	CategoryName   string          `json:"category_name,omitempty"`
	Period         budget.Period   `json:"period,omitempty"`
	BudgetLimit    decimal.Decimal `json:"budget_limit"`
	CurrentSpent   decimal.Decimal `json:"current_spent"`
	NewAmount      decimal.Decimal `json:"new_amount"`
	ProjectedTotal decimal.Decimal `json:"projected_total"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
	Remaining      decimal.Decimal `json:"remaining"`
	ExceedsBy      decimal.Decimal `json:"exceeds_by"`
}

func ToDecisionResponse(d budget.Decision) DecisionResponse {
	return DecisionResponse{
		Action:         d.Action,
		Reason:         d.Reason,
		Message:        d.Message(),
		CategoryName:   d.CategoryName,
		Period:         d.Period,
		BudgetLimit:    d.BudgetLimit,
		CurrentSpent:   d.CurrentSpent,
		NewAmount:      d.NewAmount,
		ProjectedTotal: d.ProjectedTotal,
		PercentageUsed: d.PercentageUsed,
		Remaining:      d.Remaining,
		ExceedsBy:      d.ExceedsBy,
	}
}
