package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	budgethttp "github.com/MrJamesThe3rd/budgetkeeper/internal/http/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
)

type transactionResponse struct {
	ID             uuid.UUID        `json:"id"`
	OwnerUserID    uuid.UUID        `json:"owner_user_id"`
	CategoryID     uuid.UUID        `json:"category_id"`
	CategoryName   string           `json:"category_name,omitempty"`
	Amount         decimal.Decimal  `json:"amount"`
	Type           transaction.Type `json:"type"`
	Description    string           `json:"description"`
	RawDescription string           `json:"raw_description,omitempty"`
	Date           respond.Date     `json:"date"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      *time.Time       `json:"updated_at,omitempty"`
}

type writeResponse struct {
	Transaction transactionResponse         `json:"transaction"`
	Decision    budgethttp.DecisionResponse `json:"decision"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:             tx.ID,
		OwnerUserID:    tx.OwnerUserID,
		CategoryID:     tx.CategoryID,
		CategoryName:   tx.CategoryName,
		Amount:         tx.Amount,
		Type:           tx.Type,
		Description:    tx.Description,
		RawDescription: tx.RawDescription,
		Date:           respond.Date{Time: tx.Date},
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
