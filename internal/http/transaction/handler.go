package transaction

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/auth"
	budgethttp "github.com/MrJamesThe3rd/budgetkeeper/internal/http/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

//go:generate mockgen -source=handler.go -destination=service_mock.go -package=transaction
type Service interface {
	Create(ctx context.Context, actor user.Actor, params transaction.CreateParams) (*transaction.Transaction, budget.Decision, error)
	Update(ctx context.Context, actor user.Actor, id uuid.UUID, params transaction.UpdateParams) (*transaction.Transaction, budget.Decision, error)
	Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*transaction.Transaction, error)
	List(ctx context.Context, actor user.Actor, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	OwnerUserID       uuid.UUID        `json:"owner_user_id"`
	CategoryID        uuid.UUID        `json:"category_id"`
	Amount            decimal.Decimal  `json:"amount"`
	Type              transaction.Type `json:"type"`
	Description       string           `json:"description"`
	Date              respond.Date     `json:"date"`
	ConfirmOverBudget bool             `json:"confirm_over_budget"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, decision, err := h.svc.Create(r.Context(), auth.Actor(r), transaction.CreateParams{
		OwnerUserID:       req.OwnerUserID,
		CategoryID:        req.CategoryID,
		Amount:            req.Amount,
		Type:              req.Type,
		Description:       req.Description,
		Date:              req.Date.Time,
		ConfirmOverBudget: req.ConfirmOverBudget,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, writeResponse{
		Transaction: toResponse(tx),
		Decision:    budgethttp.ToDecisionResponse(decision),
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.svc.List(r.Context(), auth.Actor(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

// ParseFilter reads the user_id, category_id, start_date, end_date and type
// query parameters.
func ParseFilter(r *http.Request) (transaction.ListFilter, error) {
	var (
		filter transaction.ListFilter
		err    error
	)

	if filter.OwnerUserID, err = respond.QueryID(r, "user_id"); err != nil {
		return filter, err
	}

	if filter.CategoryID, err = respond.QueryID(r, "category_id"); err != nil {
		return filter, err
	}

	if filter.StartDate, err = respond.QueryDate(r, "start_date"); err != nil {
		return filter, err
	}

	if filter.EndDate, err = respond.QueryDate(r, "end_date"); err != nil {
		return filter, err
	}

	if s := r.URL.Query().Get("type"); s != "" {
		filter.Type = new(transaction.Type(s))
	}

	return filter, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), auth.Actor(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), auth.Actor(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateTransactionRequest struct {
	CategoryID        *uuid.UUID        `json:"category_id,omitempty"`
	Amount            *decimal.Decimal  `json:"amount,omitempty"`
	Type              *transaction.Type `json:"type,omitempty"`
	Description       *string           `json:"description,omitempty"`
	Date              *respond.Date     `json:"date,omitempty"`
	ConfirmOverBudget bool              `json:"confirm_over_budget"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := transaction.UpdateParams{
		CategoryID:        req.CategoryID,
		Amount:            req.Amount,
		Type:              req.Type,
		Description:       req.Description,
		ConfirmOverBudget: req.ConfirmOverBudget,
	}

	if req.Date != nil {
		params.Date = &req.Date.Time
	}

	tx, decision, err := h.svc.Update(r.Context(), auth.Actor(r), id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, writeResponse{
		Transaction: toResponse(tx),
		Decision:    budgethttp.ToDecisionResponse(decision),
	})
}

type blockedResponse struct {
	Error    string                      `json:"error"`
	Decision budgethttp.DecisionResponse `json:"decision"`
}

// writeError answers a budget block with 409 and the decision, so the client
// can show it and resubmit with confirm_over_budget.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var blocked *transaction.BlockedError
	if errors.As(err, &blocked) {
		respond.JSON(w, http.StatusConflict, blockedResponse{
			Error:    blocked.Error(),
			Decision: budgethttp.ToDecisionResponse(blocked.Decision),
		})

		return
	}

	respond.Error(w, r, err)
}
