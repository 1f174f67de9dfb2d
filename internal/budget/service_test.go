package budget_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

var (
	ownerID = uuid.New()
	member  = user.Actor{UserID: ownerID, Role: user.RoleMember}
	admin   = user.Actor{UserID: uuid.New(), Role: user.RoleAdmin}
)

func TestService_Check(t *testing.T) {
	b := monthly("1000")
	b.OwnerUserID = ownerID
	dbErr := errors.New("db error")

	c := candidate(b, "100")

	type testCase struct {
		name       string
		setupMock  func(m *budget.MockRepository)
		wantReason budget.Reason
	}

	tests := []testCase{
		{
			name: "EvaluatesAgainstWindowedSpend",
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().FindBudget(gomock.Any(), ownerID, b.CategoryID).Return(b, nil)
				m.EXPECT().ListSpend(gomock.Any(), budget.SpendFilter{
					OwnerUserID: ownerID,
					CategoryID:  b.CategoryID,
					Start:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
					End:         time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
				}).Return(spent("650"), nil)
			},
			wantReason: budget.ReasonApproachingLimit,
		},
		{
			name: "NoBudget",
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().FindBudget(gomock.Any(), ownerID, b.CategoryID).Return(nil, nil)
			},
			wantReason: budget.ReasonNoBudgetConfigured,
		},
		{
			name: "BudgetLookupFailsOpen",
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().FindBudget(gomock.Any(), ownerID, b.CategoryID).Return(nil, dbErr)
			},
			wantReason: budget.ReasonLookupFailed,
		},
		{
			name: "SpendLookupFailsOpen",
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().FindBudget(gomock.Any(), ownerID, b.CategoryID).Return(b, nil)
				m.EXPECT().ListSpend(gomock.Any(), gomock.Any()).Return(nil, dbErr)
			},
			wantReason: budget.ReasonLookupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := budget.NewService(repo, budget.NewMockCategoryLookup(ctrl)).Check(context.Background(), member, c)
			require.NoError(t, err)

			assert.Equal(t, tt.wantReason, got.Reason)
			assert.False(t, got.Blocked())
		})
	}
}

func TestService_Check_InvalidCandidateIsAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := budget.NewService(budget.NewMockRepository(ctrl), budget.NewMockCategoryLookup(ctrl))

	_, err := svc.Check(context.Background(), member, budget.Candidate{CategoryID: uuid.New(), Amount: decimal.Zero})
	assert.ErrorIs(t, err, budget.ErrInvalidCandidate)
}

func TestService_Check_MemberCannotCheckForOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := budget.NewService(budget.NewMockRepository(ctrl), budget.NewMockCategoryLookup(ctrl))

	_, err := svc.Check(context.Background(), member, budget.Candidate{
		OwnerUserID: uuid.New(),
		CategoryID:  uuid.New(),
		Amount:      dec("10"),
	})
	assert.ErrorIs(t, err, user.ErrForbidden)
}

func TestService_Create(t *testing.T) {
	food := &category.Category{ID: uuid.New(), OwnerUserID: ownerID, Name: "Food", Kind: category.KindExpense, Active: true}
	salary := &category.Category{ID: uuid.New(), OwnerUserID: ownerID, Name: "Salary", Kind: category.KindIncome, Active: true}
	retired := &category.Category{ID: uuid.New(), OwnerUserID: ownerID, Name: "Old", Kind: category.KindExpense}
	foreign := &category.Category{ID: uuid.New(), OwnerUserID: uuid.New(), Name: "Theirs", Kind: category.KindExpense, Active: true}
	existing := &budget.Budget{ID: uuid.New(), OwnerUserID: ownerID, CategoryID: food.ID, CategoryName: "Food", AmountLimit: dec("300"), Period: budget.PeriodMonthly}

	params := func(c *category.Category) budget.CreateParams {
		return budget.CreateParams{CategoryID: c.ID, AmountLimit: dec("500"), Period: budget.PeriodMonthly}
	}

	type testCase struct {
		name         string
		params       budget.CreateParams
		setupMock    func(m *budget.MockRepository, cats *budget.MockCategoryLookup)
		wantErr      error
		wantValid    bool
		wantCategory string
	}

	tests := []testCase{
		{
			name:   "Success",
			params: params(food),
			setupMock: func(m *budget.MockRepository, cats *budget.MockCategoryLookup) {
				cats.EXPECT().GetCategory(gomock.Any(), food.ID).Return(food, nil)
				m.EXPECT().ListBudgets(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.EXPECT().CreateBudget(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCategory: "Food",
		},
		{
			name:   "Duplicate",
			params: params(food),
			setupMock: func(m *budget.MockRepository, cats *budget.MockCategoryLookup) {
				cats.EXPECT().GetCategory(gomock.Any(), food.ID).Return(food, nil)
				m.EXPECT().ListBudgets(gomock.Any(), gomock.Any()).Return([]*budget.Budget{existing}, nil)
			},
			wantErr: budget.ErrDuplicate,
		},
		{
			name:   "IncomeCategory",
			params: params(salary),
			setupMock: func(_ *budget.MockRepository, cats *budget.MockCategoryLookup) {
				cats.EXPECT().GetCategory(gomock.Any(), salary.ID).Return(salary, nil)
			},
			wantValid: true,
		},
		{
			name:   "InactiveCategory",
			params: params(retired),
			setupMock: func(_ *budget.MockRepository, cats *budget.MockCategoryLookup) {
				cats.EXPECT().GetCategory(gomock.Any(), retired.ID).Return(retired, nil)
			},
			wantValid: true,
		},
		{
			name:   "ForeignCategory",
			params: params(foreign),
			setupMock: func(_ *budget.MockRepository, cats *budget.MockCategoryLookup) {
				cats.EXPECT().GetCategory(gomock.Any(), foreign.ID).Return(foreign, nil)
			},
			wantValid: true,
		},
		{
			name:   "UnknownCategory",
			params: budget.CreateParams{CategoryID: uuid.New(), AmountLimit: dec("5"), Period: budget.PeriodYearly},
			setupMock: func(_ *budget.MockRepository, cats *budget.MockCategoryLookup) {
				cats.EXPECT().GetCategory(gomock.Any(), gomock.Any()).Return(nil, category.ErrNotFound)
			},
			wantValid: true,
		},
		{
			name:      "ZeroLimit",
			params:    budget.CreateParams{AmountLimit: decimal.Zero, Period: budget.PeriodMonthly},
			wantValid: true,
		},
		{
			name:      "BadPeriod",
			params:    budget.CreateParams{AmountLimit: dec("5"), Period: "weekly"},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			cats := budget.NewMockCategoryLookup(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo, cats)
			}

			got, err := budget.NewService(repo, cats).Create(context.Background(), member, tt.params)

			if tt.wantValid {
				assert.True(t, validation.Is(err), "expected validation error, got %v", err)
				return
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				var dup *budget.DuplicateError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, existing.ID, dup.Existing.ID)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, got.CategoryName)
			assert.Equal(t, ownerID, got.OwnerUserID)
		})
	}
}

func TestService_Update_ExcludesSelf(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	food := &category.Category{ID: uuid.New(), OwnerUserID: ownerID, Name: "Food", Kind: category.KindExpense, Active: true}
	b := &budget.Budget{ID: uuid.New(), OwnerUserID: ownerID, CategoryID: food.ID, AmountLimit: dec("300"), Period: budget.PeriodMonthly}
	newLimit := dec("450")

	repo := budget.NewMockRepository(ctrl)
	cats := budget.NewMockCategoryLookup(ctrl)

	repo.EXPECT().GetBudget(gomock.Any(), b.ID).Return(b, nil)
	cats.EXPECT().GetCategory(gomock.Any(), food.ID).Return(food, nil)
	repo.EXPECT().ListBudgets(gomock.Any(), gomock.Any()).Return([]*budget.Budget{b}, nil)
	repo.EXPECT().UpdateBudget(gomock.Any(), gomock.Any()).Return(nil)

	got, err := budget.NewService(repo, cats).Update(context.Background(), member, b.ID, budget.UpdateParams{AmountLimit: &newLimit})
	require.NoError(t, err)
	assertDecimal(t, "450", got.AmountLimit, "limit")
}

func TestService_Update_InactiveCategory(t *testing.T) {
	food := &category.Category{ID: uuid.New(), OwnerUserID: ownerID, Name: "Food", Kind: category.KindExpense, Active: false}
	travel := &category.Category{ID: uuid.New(), OwnerUserID: ownerID, Name: "Travel", Kind: category.KindExpense, Active: false}
	newLimit := dec("450")
	yearly := budget.PeriodYearly

	type testCase struct {
		name      string
		params    budget.UpdateParams
		lookup    *category.Category
		wantValid bool
	}

	tests := []testCase{
		{
			name:   "LimitOnDeactivatedCategory",
			params: budget.UpdateParams{AmountLimit: &newLimit},
			lookup: food,
		},
		{
			name:   "PeriodOnDeactivatedCategory",
			params: budget.UpdateParams{Period: &yearly},
			lookup: food,
		},
		{
			name:   "SameCategoryRepeated",
			params: budget.UpdateParams{CategoryID: &food.ID, AmountLimit: &newLimit},
			lookup: food,
		},
		{
			name:      "MoveOntoInactiveCategory",
			params:    budget.UpdateParams{CategoryID: &travel.ID},
			lookup:    travel,
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			b := &budget.Budget{ID: uuid.New(), OwnerUserID: ownerID, CategoryID: food.ID, AmountLimit: dec("300"), Period: budget.PeriodMonthly}

			repo := budget.NewMockRepository(ctrl)
			cats := budget.NewMockCategoryLookup(ctrl)

			repo.EXPECT().GetBudget(gomock.Any(), b.ID).Return(b, nil)
			cats.EXPECT().GetCategory(gomock.Any(), tt.lookup.ID).Return(tt.lookup, nil)

			if !tt.wantValid {
				repo.EXPECT().ListBudgets(gomock.Any(), gomock.Any()).Return([]*budget.Budget{b}, nil)
				repo.EXPECT().UpdateBudget(gomock.Any(), gomock.Any()).Return(nil)
			}

			_, err := budget.NewService(repo, cats).Update(context.Background(), member, b.ID, tt.params)

			if tt.wantValid {
				assert.True(t, validation.Is(err), "expected validation error, got %v", err)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestService_Delete_Forbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().GetBudget(gomock.Any(), id).Return(&budget.Budget{ID: id, OwnerUserID: uuid.New()}, nil)

	err := budget.NewService(repo, budget.NewMockCategoryLookup(ctrl)).Delete(context.Background(), member, id)
	assert.ErrorIs(t, err, user.ErrForbidden)
}

func TestService_Progress(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ok := monthly("1000")
	warn := monthly("100")
	over := monthly("50")

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().ListBudgets(gomock.Any(), gomock.Any()).Return([]*budget.Budget{ok, warn, over}, nil)
	repo.EXPECT().ListSpend(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f budget.SpendFilter) ([]budget.Spend, error) {
			switch f.CategoryID {
			case ok.CategoryID:
				return spent("100"), nil
			case warn.CategoryID:
				return spent("40", "35"), nil
			default:
				return spent("80"), nil
			}
		}).Times(3)

	ref := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	got, err := budget.NewService(repo, budget.NewMockCategoryLookup(ctrl)).Progress(context.Background(), admin, budget.ListFilter{}, ref)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, budget.StatusOK, got[0].Status)
	assertDecimal(t, "900", got[0].Available, "available")

	assert.Equal(t, budget.StatusWarning, got[1].Status)
	assertDecimal(t, "75", got[1].Percentage, "percentage")

	assert.Equal(t, budget.StatusDanger, got[2].Status)
	assert.True(t, got[2].Exceeded)
	assertDecimal(t, "160", got[2].Percentage, "percentage")
	assertDecimal(t, "100", got[2].DisplayPercentage, "display")
	assertDecimal(t, "-30", got[2].Available, "available")
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got[2].WindowStart)
}

func TestService_Progress_SpendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().ListBudgets(gomock.Any(), gomock.Any()).Return([]*budget.Budget{monthly("10")}, nil)
	repo.EXPECT().ListSpend(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

	_, err := budget.NewService(repo, budget.NewMockCategoryLookup(ctrl)).Progress(context.Background(), member, budget.ListFilter{}, time.Now())
	assert.Error(t, err)
}
