package matching

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/matching"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

//go:generate mockgen -source=handler.go -destination=service_mock.go -package=matching
type Service interface {
	Suggest(ctx context.Context, owner uuid.UUID, rawDescription string) (string, error)
	Learn(ctx context.Context, actor user.Actor, params matching.LearnParams) (*matching.Mapping, error)
	List(ctx context.Context, actor user.Actor, owner *uuid.UUID) ([]*matching.Mapping, error)
	Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.learn)
	r.Get("/suggest", h.suggest)
	r.Delete("/{id}", h.delete)
}

type suggestResponse struct {
	RawDescription       string `json:"raw_description"`
	PreferredDescription string `json:"preferred_description"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		respond.Error(w, r, validation.New("raw_description", "is required"))
		return
	}

	requested, err := respond.QueryID(r, "user_id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var ownerID uuid.UUID
	if requested != nil {
		ownerID = *requested
	}

	owner, err := auth.Actor(r).TargetOwner(ownerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	preferred, err := h.svc.Suggest(r.Context(), owner, rawDesc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{
		RawDescription:       rawDesc,
		PreferredDescription: preferred,
	})
}

type learnRequest struct {
	OwnerUserID          uuid.UUID `json:"owner_user_id"`
	RawPattern           string    `json:"raw_pattern"`
	PreferredDescription string    `json:"preferred_description"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	m, err := h.svc.Learn(r.Context(), auth.Actor(r), matching.LearnParams{
		OwnerUserID:          req.OwnerUserID,
		RawPattern:           req.RawPattern,
		PreferredDescription: req.PreferredDescription,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(m))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	owner, err := respond.QueryID(r, "user_id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	mappings, err := h.svc.List(r.Context(), auth.Actor(r), owner)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]mappingResponse, len(mappings))
	for i, m := range mappings {
		resp[i] = toResponse(m)
	}

	respond.JSON(w, http.StatusOK, resp)
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
