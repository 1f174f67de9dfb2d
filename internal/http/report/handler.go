package report

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/report"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

//go:generate mockgen -source=handler.go -destination=service_mock.go -package=report
type Service interface {
	Summary(ctx context.Context, actor user.Actor, filter report.Filter) (report.Summary, error)
	ExpensesByCategory(ctx context.Context, actor user.Actor, filter report.Filter) ([]report.CategoryAmount, error)
	MonthlyEvolution(ctx context.Context, actor user.Actor, filter report.Filter) ([]report.MonthTotals, error)
	Overview(ctx context.Context, actor user.Actor, filter report.Filter) (*report.Overview, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/by-category", h.byCategory)
	r.Get("/monthly", h.monthly)
	r.Get("/overview", h.overview)
}

func parseFilter(r *http.Request) (report.Filter, error) {
	var (
		f   report.Filter
		err error
	)

	if f.OwnerUserID, err = respond.QueryID(r, "user_id"); err != nil {
		return f, err
	}

	if f.StartDate, err = respond.QueryDate(r, "start_date"); err != nil {
		return f, err
	}

	if f.EndDate, err = respond.QueryDate(r, "end_date"); err != nil {
		return f, err
	}

	return f, nil
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	s, err := h.svc.Summary(r.Context(), auth.Actor(r), f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSummaryResponse(s))
}

func (h *Handler) byCategory(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	rows, err := h.svc.ExpensesByCategory(r.Context(), auth.Actor(r), f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toCategoryResponses(rows))
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	months, err := h.svc.MonthlyEvolution(r.Context(), auth.Actor(r), f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toMonthResponses(months))
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	o, err := h.svc.Overview(r.Context(), auth.Actor(r), f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, overviewResponse{
		Summary:    toSummaryResponse(o.Summary),
		ByCategory: toCategoryResponses(o.ByCategory),
		Monthly:    toMonthResponses(o.Monthly),
	})
}
