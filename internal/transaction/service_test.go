package transaction_test

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
	"github.com/MrJamesThe3rd/budgetkeeper/internal/notify"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

var (
	ownerID = uuid.New()
	member  = user.Actor{UserID: ownerID, Role: user.RoleMember}

	groceries = &category.Category{ID: uuid.New(), OwnerUserID: ownerID, Name: "Groceries", Kind: category.KindExpense, Active: true}
	salary    = &category.Category{ID: uuid.New(), OwnerUserID: ownerID, Name: "Salary", Kind: category.KindIncome, Active: true}

	date = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
)

type mocks struct {
	repo      *transaction.MockRepository
	budgets   *transaction.MockBudgetChecker
	cats      *transaction.MockCategoryLookup
	publisher *transaction.MockPublisher
}

func newMocks(ctrl *gomock.Controller) mocks {
	return mocks{
		repo:      transaction.NewMockRepository(ctrl),
		budgets:   transaction.NewMockBudgetChecker(ctrl),
		cats:      transaction.NewMockCategoryLookup(ctrl),
		publisher: transaction.NewMockPublisher(ctrl),
	}
}

func (m mocks) service() *transaction.Service {
	return transaction.NewService(m.repo, m.budgets, m.cats, m.publisher)
}

func expense(amount string) transaction.CreateParams {
	return transaction.CreateParams{
		CategoryID:  groceries.ID,
		Amount:      decimal.RequireFromString(amount),
		Type:        transaction.TypeExpense,
		Description: "Supermarket",
		Date:        date,
	}
}

func TestService_Create(t *testing.T) {
	blocked := budget.Decision{Action: budget.ActionBlock, Reason: budget.ReasonOverBudget, CategoryName: "Groceries"}
	warning := budget.Decision{Action: budget.ActionAllowWithWarning, Reason: budget.ReasonApproachingLimit}
	within := budget.Decision{Action: budget.ActionAllow, Reason: budget.ReasonWithinBudget}

	confirmed := expense("150")
	confirmed.ConfirmOverBudget = true

	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name       string
		args       args
		setupMock  func(m mocks)
		wantReason budget.Reason
		wantErr    error
		wantValid  bool
	}

	tests := []testCase{
		{
			name: "WithinBudget",
			args: args{params: expense("20")},
			setupMock: func(m mocks) {
				m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(groceries, nil)
				m.budgets.EXPECT().Check(gomock.Any(), member, gomock.Any()).Return(within, nil)
				m.repo.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
			wantReason: budget.ReasonWithinBudget,
		},
		{
			name: "WarningIsPublished",
			args: args{params: expense("100")},
			setupMock: func(m mocks) {
				m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(groceries, nil)
				m.budgets.EXPECT().Check(gomock.Any(), member, gomock.Any()).Return(warning, nil)
				m.repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e notify.Event) error {
						assert.Equal(t, notify.EventBudgetWarning, e.Type)
						return nil
					})
			},
			wantReason: budget.ReasonApproachingLimit,
		},
		{
			name: "PublishFailureDoesNotFailWrite",
			args: args{params: expense("100")},
			setupMock: func(m mocks) {
				m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(groceries, nil)
				m.budgets.EXPECT().Check(gomock.Any(), member, gomock.Any()).Return(warning, nil)
				m.repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
			},
			wantReason: budget.ReasonApproachingLimit,
		},
		{
			name: "BlockedIsNotPersisted",
			args: args{params: expense("150")},
			setupMock: func(m mocks) {
				m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(groceries, nil)
				m.budgets.EXPECT().Check(gomock.Any(), member, gomock.Any()).Return(blocked, nil)
			},
			wantErr: transaction.ErrOverBudget,
		},
		{
			name: "ConfirmedOverride",
			args: args{params: confirmed},
			setupMock: func(m mocks) {
				m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(groceries, nil)
				m.budgets.EXPECT().Check(gomock.Any(), member, gomock.Any()).Return(blocked, nil)
				m.repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e notify.Event) error {
						assert.Equal(t, notify.EventBudgetOverride, e.Type)
						return nil
					})
			},
			wantReason: budget.ReasonOverBudget,
		},
		{
			name: "IncomeSkipsBudget",
			args: args{params: transaction.CreateParams{
				CategoryID: salary.ID,
				Amount:     decimal.NewFromInt(2500),
				Type:       transaction.TypeIncome,
				Date:       date,
			}},
			setupMock: func(m mocks) {
				m.cats.EXPECT().GetCategory(gomock.Any(), salary.ID).Return(salary, nil)
				m.repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantReason: budget.ReasonNotAnExpense,
		},
		{
			name: "KindMismatch",
			args: args{params: transaction.CreateParams{
				CategoryID: salary.ID,
				Amount:     decimal.NewFromInt(10),
				Type:       transaction.TypeExpense,
				Date:       date,
			}},
			setupMock: func(m mocks) {
				m.cats.EXPECT().GetCategory(gomock.Any(), salary.ID).Return(salary, nil)
			},
			wantValid: true,
		},
		{
			name: "InactiveCategory",
			args: args{params: expense("10")},
			setupMock: func(m mocks) {
				inactive := *groceries
				inactive.Active = false
				m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(&inactive, nil)
			},
			wantValid: true,
		},
		{
			name: "ZeroAmount",
			args: args{params: expense("0")},
			setupMock: func(m mocks) {
				m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(groceries, nil)
			},
			wantValid: true,
		},
		{
			name: "FutureDate",
			args: args{params: transaction.CreateParams{
				CategoryID: groceries.ID,
				Amount:     decimal.NewFromInt(10),
				Type:       transaction.TypeExpense,
				Date:       time.Now().AddDate(0, 0, 3),
			}},
			setupMock: func(m mocks) {
				m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(groceries, nil)
			},
			wantValid: true,
		},
		{
			name: "RepoError",
			args: args{params: expense("20")},
			setupMock: func(m mocks) {
				m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(groceries, nil)
				m.budgets.EXPECT().Check(gomock.Any(), member, gomock.Any()).Return(within, nil)
				m.repo.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			got, decision, err := m.service().Create(context.Background(), member, tt.args.params)

			if tt.wantValid {
				assert.True(t, validation.Is(err), "expected validation error, got %v", err)
				return
			}

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, transaction.ErrOverBudget) {
					var blockedErr *transaction.BlockedError
					require.ErrorAs(t, err, &blockedErr)
					assert.Equal(t, budget.ReasonOverBudget, blockedErr.Decision.Reason)
					assert.True(t, decision.Blocked())
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantReason, decision.Reason)
			assert.Equal(t, ownerID, got.OwnerUserID)
		})
	}
}

func TestService_Create_PassesCandidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newMocks(ctrl)
	m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(groceries, nil)
	m.budgets.EXPECT().Check(gomock.Any(), member, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ user.Actor, c budget.Candidate) (budget.Decision, error) {
			assert.Equal(t, groceries.ID, c.CategoryID)
			assert.Equal(t, ownerID, c.OwnerUserID)
			assert.Equal(t, date, c.Date)
			assert.Nil(t, c.ExcludingTransactionID)
			assert.True(t, decimal.NewFromInt(42).Equal(c.Amount))

			return budget.Decision{Action: budget.ActionAllow, Reason: budget.ReasonNoBudgetConfigured}, nil
		})
	m.repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)

	_, _, err := m.service().Create(context.Background(), member, expense("42"))
	require.NoError(t, err)
}

func TestService_Create_MemberCannotTargetOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	params := expense("10")
	params.OwnerUserID = uuid.New()

	_, _, err := newMocks(ctrl).service().Create(context.Background(), member, params)
	assert.ErrorIs(t, err, user.ErrForbidden)
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	stored := func() *transaction.Transaction {
		return &transaction.Transaction{
			ID:          id,
			OwnerUserID: ownerID,
			CategoryID:  groceries.ID,
			Amount:      decimal.NewFromInt(200),
			Type:        transaction.TypeExpense,
			Date:        date,
		}
	}

	t.Run("ExcludesItself", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		amount := decimal.NewFromInt(250)

		m := newMocks(ctrl)
		m.repo.EXPECT().GetTransaction(gomock.Any(), id).Return(stored(), nil)
		m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(groceries, nil)
		m.budgets.EXPECT().Check(gomock.Any(), member, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ user.Actor, c budget.Candidate) (budget.Decision, error) {
				require.NotNil(t, c.ExcludingTransactionID)
				assert.Equal(t, id, *c.ExcludingTransactionID)

				return budget.Decision{Action: budget.ActionAllow, Reason: budget.ReasonWithinBudget}, nil
			})
		m.repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

		got, _, err := m.service().Update(context.Background(), member, id, transaction.UpdateParams{Amount: &amount})
		require.NoError(t, err)
		assert.True(t, amount.Equal(got.Amount))
		assert.Equal(t, ownerID, got.OwnerUserID)
	})

	t.Run("KeepsDeactivatedCategory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		inactive := *groceries
		inactive.Active = false
		desc := "fixed typo"

		m := newMocks(ctrl)
		m.repo.EXPECT().GetTransaction(gomock.Any(), id).Return(stored(), nil)
		m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(&inactive, nil)
		m.budgets.EXPECT().Check(gomock.Any(), member, gomock.Any()).
			Return(budget.Decision{Action: budget.ActionAllow, Reason: budget.ReasonNoBudgetConfigured}, nil)
		m.repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

		_, _, err := m.service().Update(context.Background(), member, id, transaction.UpdateParams{Description: &desc})
		require.NoError(t, err)
	})

	t.Run("BlockedLeavesRowUntouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		amount := decimal.NewFromInt(5000)

		m := newMocks(ctrl)
		m.repo.EXPECT().GetTransaction(gomock.Any(), id).Return(stored(), nil)
		m.cats.EXPECT().GetCategory(gomock.Any(), groceries.ID).Return(groceries, nil)
		m.budgets.EXPECT().Check(gomock.Any(), member, gomock.Any()).
			Return(budget.Decision{Action: budget.ActionBlock, Reason: budget.ReasonOverBudget}, nil)

		_, _, err := m.service().Update(context.Background(), member, id, transaction.UpdateParams{Amount: &amount})
		assert.ErrorIs(t, err, transaction.ErrOverBudget)
	})

	t.Run("OtherMembersRow", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		foreign := stored()
		foreign.OwnerUserID = uuid.New()

		m := newMocks(ctrl)
		m.repo.EXPECT().GetTransaction(gomock.Any(), id).Return(foreign, nil)

		_, _, err := m.service().Update(context.Background(), member, id, transaction.UpdateParams{})
		assert.ErrorIs(t, err, user.ErrForbidden)
	})
}

func TestService_List(t *testing.T) {
	type args struct {
		filter transaction.ListFilter
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantLen   int
		wantErr   bool
	}

	other := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{OwnerUserID: &ownerID}).
					Return([]*transaction.Transaction{
						{ID: uuid.New()},
						{ID: uuid.New()},
					}, nil)
			},
			wantLen: 2,
		},
		{
			name: "MemberCannotWidenScope",
			args: args{filter: transaction.ListFilter{OwnerUserID: &other}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{OwnerUserID: &ownerID}).
					Return(nil, nil)
			},
		},
		{
			name: "Error",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("list error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(m.repo)
			}

			got, err := m.service().List(context.Background(), member, tt.args.filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_FindDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	params := []transaction.CreateParams{
		{Amount: decimal.RequireFromString("10.00"), Type: transaction.TypeExpense, RawDescription: "COFFEE SHOP", Date: date},
		{Amount: decimal.RequireFromString("20.00"), Type: transaction.TypeExpense, RawDescription: "LUNCH PLACE", Date: date},
	}

	existing := &transaction.Transaction{
		ID:             uuid.New(),
		Amount:         decimal.RequireFromString("10"),
		Type:           transaction.TypeExpense,
		RawDescription: "COFFEE SHOP",
		Date:           date,
	}

	m := newMocks(ctrl)
	m.repo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{OwnerUserID: &ownerID, StartDate: &date, EndDate: &date}).
		Return([]*transaction.Transaction{existing}, nil)

	got, err := m.service().FindDuplicates(context.Background(), member, uuid.Nil, params)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, existing, got[0])
	assert.Nil(t, got[1])
}

func TestService_FindDuplicates_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	got, err := newMocks(ctrl).service().FindDuplicates(context.Background(), member, uuid.Nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
