package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/export"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/respond"
	transactionhttp "github.com/MrJamesThe3rd/budgetkeeper/internal/http/transaction"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

//go:generate mockgen -source=handler.go -destination=service_mock.go -package=export
type Service interface {
	WriteCSV(ctx context.Context, actor user.Actor, filter transaction.ListFilter, w io.Writer) (int, error)
	Summary(ctx context.Context, actor user.Actor, filter transaction.ListFilter) (string, error)
}

type Handler struct {
	svc Service
	now func() time.Time
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Get("/summary", h.summary)
}

// download buffers the CSV so that a failed listing can still be reported as
// a JSON error instead of a truncated file.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionhttp.ParseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer

	n, err := h.svc.WriteCSV(r.Context(), auth.Actor(r), filter, &buf)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(filter, h.now())))
	w.Header().Set("X-Export-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

type summaryResponse struct {
	Body string `json:"body"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionhttp.ParseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	body, err := h.svc.Summary(r.Context(), auth.Actor(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, summaryResponse{Body: body})
}
