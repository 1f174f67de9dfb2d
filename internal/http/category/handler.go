package category

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

//go:generate mockgen -source=handler.go -destination=service_mock.go -package=category
type Service interface {
	Create(ctx context.Context, actor user.Actor, params category.CreateParams) (*category.Category, error)
	Update(ctx context.Context, actor user.Actor, id uuid.UUID, params category.UpdateParams) (*category.Category, error)
	Reactivate(ctx context.Context, actor user.Actor, id uuid.UUID) (*category.Category, error)
	Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*category.Category, error)
	List(ctx context.Context, actor user.Actor, filter category.ListFilter) ([]*category.Category, error)
	Preview(ctx context.Context, actor user.Actor, id uuid.UUID) (category.LifecycleDecision, error)
	Delete(ctx context.Context, actor user.Actor, id uuid.UUID) (category.LifecycleDecision, error)
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
	r.Get("/{id}/lifecycle", h.preview)
	r.Post("/{id}/reactivate", h.reactivate)
}

type createCategoryRequest struct {
	OwnerUserID uuid.UUID     `json:"owner_user_id"`
	Name        string        `json:"name"`
	Kind        category.Kind `json:"kind"`
	Color       string        `json:"color"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), auth.Actor(r), category.CreateParams{
		OwnerUserID: req.OwnerUserID,
		Name:        req.Name,
		Kind:        req.Kind,
		Color:       req.Color,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	owner, err := respond.QueryID(r, "user_id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	filter := category.ListFilter{
		OwnerUserID:     owner,
		IncludeInactive: respond.QueryBool(r, "include_inactive"),
	}

	if k := r.URL.Query().Get("kind"); k != "" {
		filter.Kind = new(category.Kind(k))
	}

	cats, err := h.svc.List(r.Context(), auth.Actor(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(cats))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Get(r.Context(), auth.Actor(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

type updateCategoryRequest struct {
	Name  *string        `json:"name,omitempty"`
	Kind  *category.Kind `json:"kind,omitempty"`
	Color *string        `json:"color,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateCategoryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Update(r.Context(), auth.Actor(r), id, category.UpdateParams{
		Name:  req.Name,
		Kind:  req.Kind,
		Color: req.Color,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	d, err := h.svc.Delete(r.Context(), auth.Actor(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDecisionResponse(d))
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	id, err := respond.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	d, err := h.svc.Preview(r.Context(), auth.Actor(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDecisionResponse(d))
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := respond.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Reactivate(r.Context(), auth.Actor(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

type conflictResponse struct {
	Error    string           `json:"error"`
	Existing categoryResponse `json:"existing"`
}

// writeError adds the clashing category to duplicate-name conflicts.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var dup *category.DuplicateError
	if errors.As(err, &dup) && dup.Existing != nil {
		respond.JSON(w, http.StatusConflict, conflictResponse{Error: dup.Error(), Existing: toResponse(dup.Existing)})
		return
	}

	respond.Error(w, r, err)
}
