package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/report"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

var (
	ownerID = uuid.New()
	member  = user.Actor{UserID: ownerID, Role: user.RoleMember}
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := report.NewMockRepository(ctrl)
	repo.EXPECT().Totals(gomock.Any(), report.Filter{OwnerUserID: &ownerID}).Return(d("3000"), d("1250.50"), nil)

	got, err := report.NewService(repo).Summary(context.Background(), member, report.Filter{})
	require.NoError(t, err)
	assert.True(t, d("1749.50").Equal(got.Balance), got.Balance.String())
}

func TestService_ExpensesByCategory_SortedDescending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := report.NewMockRepository(ctrl)
	repo.EXPECT().ExpensesByCategory(gomock.Any(), gomock.Any()).Return([]report.CategoryAmount{
		{Name: "Fun", Amount: d("40")},
		{Name: "Rent", Amount: d("900")},
		{Name: "Food", Amount: d("310.20")},
	}, nil)

	got, err := report.NewService(repo).ExpensesByCategory(context.Background(), member, report.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Rent", "Food", "Fun"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestService_MonthlyEvolution_Ascending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := report.NewMockRepository(ctrl)
	repo.EXPECT().MonthlyTotals(gomock.Any(), gomock.Any()).Return([]report.MonthTotals{
		{Month: "2024-03"}, {Month: "2023-12"}, {Month: "2024-01"},
	}, nil)

	got, err := report.NewService(repo).MonthlyEvolution(context.Background(), member, report.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "2023-12", got[0].Month)
	assert.Equal(t, "2024-03", got[2].Month)
}

func TestService_Overview(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *report.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *report.MockRepository) {
				m.EXPECT().Totals(gomock.Any(), gomock.Any()).Return(d("10"), d("4"), nil)
				m.EXPECT().ExpensesByCategory(gomock.Any(), gomock.Any()).Return([]report.CategoryAmount{{Name: "Food", Amount: d("4")}}, nil)
				m.EXPECT().MonthlyTotals(gomock.Any(), gomock.Any()).Return([]report.MonthTotals{{Month: "2024-01"}}, nil)
			},
		},
		{
			name: "AnyPartFails",
			setupMock: func(m *report.MockRepository) {
				m.EXPECT().Totals(gomock.Any(), gomock.Any()).Return(d("10"), d("4"), nil).AnyTimes()
				m.EXPECT().ExpensesByCategory(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error")).AnyTimes()
				m.EXPECT().MonthlyTotals(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := report.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := report.NewService(repo).Overview(context.Background(), member, report.Filter{})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.True(t, d("6").Equal(got.Summary.Balance))
			assert.Len(t, got.ByCategory, 1)
			assert.Len(t, got.Monthly, 1)
		})
	}
}
