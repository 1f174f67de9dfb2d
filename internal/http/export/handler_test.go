package export_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	exporthttp "github.com/MrJamesThe3rd/budgetkeeper/internal/http/export"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

var member = user.Actor{UserID: uuid.New(), Role: user.RoleMember}

func serve(svc exporthttp.Service, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(user.WithActor(r.Context(), member)))
		})
	})
	r.Route("/export", exporthttp.NewHandler(svc).Routes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestHandler_Download(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := exporthttp.NewMockService(ctrl)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	expense := transaction.TypeExpense

	svc.EXPECT().
		WriteCSV(gomock.Any(), member, transaction.ListFilter{StartDate: &start, EndDate: &end, Type: &expense}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ user.Actor, _ transaction.ListFilter, w io.Writer) (int, error) {
			_, err := io.WriteString(w, "Date,Description,Amount\n2024-03-02,Bakery,-3.10\n")
			return 1, err
		})

	w := serve(svc, httptest.NewRequest(http.MethodGet, "/export?start_date=2024-03-01&end_date=2024-03-31&type=expense", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="transactions_20240301_20240331.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", w.Header().Get("X-Export-Count"))
	assert.Contains(t, w.Body.String(), "Bakery")
}

func TestHandler_DownloadErrors(t *testing.T) {
	type testCase struct {
		name       string
		path       string
		setupMock  func(svc *exporthttp.MockService)
		wantStatus int
	}

	tests := []testCase{
		{
			name:       "BadDate",
			path:       "/export?start_date=yesterday",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Forbidden",
			path: "/export?user_id=" + uuid.NewString(),
			setupMock: func(svc *exporthttp.MockService) {
				svc.EXPECT().WriteCSV(gomock.Any(), member, gomock.Any(), gomock.Any()).Return(0, user.ErrForbidden)
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := exporthttp.NewMockService(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}

			w := serve(svc, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestHandler_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := exporthttp.NewMockService(ctrl)
	svc.EXPECT().Summary(gomock.Any(), member, transaction.ListFilter{}).Return("* 2024-03-02 | Bakery | -3.10 | Food\n", nil)

	w := serve(svc, httptest.NewRequest(http.MethodGet, "/export/summary", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"body":"* 2024-03-02 | Bakery | -3.10 | Food\n"}`, w.Body.String())
}
