package budget

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

//go:generate mockgen -source=handler.go -destination=service_mock.go -package=budget
type Service interface {
	Check(ctx context.Context, actor user.Actor, c budget.Candidate) (budget.Decision, error)
	Create(ctx context.Context, actor user.Actor, params budget.CreateParams) (*budget.Budget, error)
	Update(ctx context.Context, actor user.Actor, id uuid.UUID, params budget.UpdateParams) (*budget.Budget, error)
	Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*budget.Budget, error)
	List(ctx context.Context, actor user.Actor, filter budget.ListFilter) ([]*budget.Budget, error)
	Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error
	Progress(ctx context.Context, actor user.Actor, filter budget.ListFilter, ref time.Time) ([]budget.Progress, error)
}

type Handler struct {
	svc Service
	now func() time.Time
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/progress", h.progress)
	r.Post("/check", h.check)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createBudgetRequest struct {
	OwnerUserID uuid.UUID       `json:"owner_user_id"`
	CategoryID  uuid.UUID       `json:"category_id"`
	AmountLimit decimal.Decimal `json:"amount_limit"`
	Period      budget.Period   `json:"period"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Create(r.Context(), auth.Actor(r), budget.CreateParams{
		OwnerUserID: req.OwnerUserID,
		CategoryID:  req.CategoryID,
		AmountLimit: req.AmountLimit,
		Period:      req.Period,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(b))
}

func (h *Handler) filter(r *http.Request) (budget.ListFilter, error) {
	owner, err := respond.QueryID(r, "user_id")
	if err != nil {
		return budget.ListFilter{}, err
	}

	categoryID, err := respond.QueryID(r, "category_id")
	if err != nil {
		return budget.ListFilter{}, err
	}

	return budget.ListFilter{OwnerUserID: owner, CategoryID: categoryID}, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	budgets, err := h.svc.List(r.Context(), auth.Actor(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		resp[i] = toResponse(b)
	}

	respond.JSON(w, http.StatusOK, resp)
}

// progress reports every budget for the period containing ?date (today when
// absent).
func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	ref, err := respond.QueryDate(r, "date")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if ref == nil {
		ref = new(h.now())
	}

	progress, err := h.svc.Progress(r.Context(), auth.Actor(r), filter, *ref)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]progressResponse, len(progress))
	for i, p := range progress {
		resp[i] = toProgressResponse(p)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type checkRequest struct {
	OwnerUserID            uuid.UUID       `json:"owner_user_id"`
	CategoryID             uuid.UUID       `json:"category_id"`
	Amount                 decimal.Decimal `json:"amount"`
	Date                   *respond.Date   `json:"date,omitempty"`
	ExcludingTransactionID *uuid.UUID      `json:"excluding_transaction_id,omitempty"`
}

// check evaluates a would-be expense without writing anything.
func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	c := budget.Candidate{
		OwnerUserID:            req.OwnerUserID,
		CategoryID:             req.CategoryID,
		Amount:                 req.Amount,
		ExcludingTransactionID: req.ExcludingTransactionID,
	}

	if req.Date != nil {
		c.Date = req.Date.Time
	}

	d, err := h.svc.Check(r.Context(), auth.Actor(r), c)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToDecisionResponse(d))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Get(r.Context(), auth.Actor(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(b))
}

type updateBudgetRequest struct {
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	AmountLimit *decimal.Decimal `json:"amount_limit,omitempty"`
	Period      *budget.Period   `json:"period,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateBudgetRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Update(r.Context(), auth.Actor(r), id, budget.UpdateParams{
		CategoryID:  req.CategoryID,
		AmountLimit: req.AmountLimit,
		Period:      req.Period,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(b))
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

type conflictResponse struct {
	Error    string         `json:"error"`
	Existing budgetResponse `json:"existing"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var dup *budget.DuplicateError
	if errors.As(err, &dup) && dup.Existing != nil {
		respond.JSON(w, http.StatusConflict, conflictResponse{Error: dup.Error(), Existing: toResponse(dup.Existing)})
		return
	}

	respond.Error(w, r, err)
}
