package report_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	reporthttp "github.com/MrJamesThe3rd/budgetkeeper/internal/http/report"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/report"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

var admin = user.Actor{UserID: uuid.New(), Role: user.RoleAdmin}

func serve(svc reporthttp.Service, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(user.WithActor(r.Context(), admin)))
		})
	})
	r.Route("/reports", reporthttp.NewHandler(svc).Routes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

func TestHandler_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := uuid.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	svc := reporthttp.NewMockService(ctrl)
	svc.EXPECT().
		Summary(gomock.Any(), admin, report.Filter{OwnerUserID: &owner, StartDate: &start}).
		Return(report.Summary{
			Income:   decimal.NewFromInt(3000),
			Expenses: decimal.RequireFromString("1250.40"),
			Balance:  decimal.RequireFromString("1749.60"),
		}, nil)

	w := serve(svc, "/reports/summary?user_id="+owner.String()+"&start_date=2024-01-01")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"income":"3000","expenses":"1250.4","balance":"1749.6"}`, w.Body.String())
}

func TestHandler_Overview(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	catID := uuid.New()

	svc := reporthttp.NewMockService(ctrl)
	svc.EXPECT().Overview(gomock.Any(), admin, report.Filter{}).Return(&report.Overview{
		ByCategory: []report.CategoryAmount{{CategoryID: catID, Name: "Food", Color: "#ff0000", Amount: decimal.NewFromInt(90)}},
		Monthly:    []report.MonthTotals{{Month: "2024-03", Income: decimal.Zero, Expenses: decimal.NewFromInt(90)}},
	}, nil)

	w := serve(svc, "/reports/overview")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"month":"2024-03"`)
	assert.Contains(t, w.Body.String(), catID.String())
}

func TestHandler_BadFilter(t *testing.T) {
	tests := []string{
		"/reports/by-category?start_date=March",
		"/reports/monthly?user_id=me",
	}

	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			w := serve(reporthttp.NewMockService(ctrl), path)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
