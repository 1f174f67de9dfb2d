package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/category"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/export"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/importcsv"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/matching"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/report"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/transaction"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/user"
)

type Handlers struct {
	Users        *user.Handler
	Categories   *category.Handler
	Budgets      *budget.Handler
	Transactions *transaction.Handler
	Reports      *report.Handler
	Import       *importcsv.Handler
	Mappings     *matching.Handler
	Export       *export.Handler
}

func New(h Handlers, tokens auth.TokenParser, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition", "X-Export-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authn := auth.Middleware(tokens)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.AllowContentType("application/json")).Post("/session", h.Users.CreateSession)

		r.Route("/users", func(r chi.Router) {
			h.Users.Routes(r, authn)
		})

		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Route("/categories", h.Categories.Routes)
			r.Route("/budgets", h.Budgets.Routes)
			r.Route("/transactions", h.Transactions.Routes)
			r.Route("/reports", h.Reports.Routes)
			r.Route("/import", h.Import.Routes)
			r.Route("/mappings", h.Mappings.Routes)
			r.Route("/export", h.Export.Routes)
		})
	})

	return router
}
