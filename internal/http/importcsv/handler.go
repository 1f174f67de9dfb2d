package importcsv

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/importer"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

//go:generate mockgen -source=handler.go -destination=service_mock.go -package=importcsv
type Service interface {
	Import(ctx context.Context, actor user.Actor, params importer.Params) (*importer.Result, error)
}

type Handler struct {
	svc       Service
	maxUpload int64
}

func NewHandler(svc Service, maxUpload int64) *Handler {
	return &Handler{svc: svc, maxUpload: maxUpload}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, r, validation.New("file", "is larger than the upload limit"))
			return
		}

		respond.Error(w, r, validation.New("file", "failed to parse form: "+err.Error()))

		return
	}

	params := importer.Params{Profile: strings.TrimSpace(r.FormValue("profile"))}

	for field, dst := range map[string]*uuid.UUID{
		"user_id":             &params.OwnerUserID,
		"expense_category_id": &params.ExpenseCategoryID,
		"income_category_id":  &params.IncomeCategoryID,
	} {
		s := strings.TrimSpace(r.FormValue(field))
		if s == "" {
			continue
		}

		id, err := uuid.Parse(s)
		if err != nil {
			respond.Error(w, r, validation.New(field, "must be a valid id"))
			return
		}

		*dst = id
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, validation.New("file", "is required"))
		return
	}
	defer file.Close()

	params.Reader = file

	result, err := h.svc.Import(r.Context(), auth.Actor(r), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(result))
}
