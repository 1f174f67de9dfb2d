package category_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

var (
	ownerID = uuid.New()
	member  = user.Actor{UserID: ownerID, Role: user.RoleMember}
	admin   = user.Actor{UserID: uuid.New(), Role: user.RoleAdmin}
)

func TestService_Create(t *testing.T) {
	dbErr := errors.New("db error")
	existing := &category.Category{ID: uuid.New(), OwnerUserID: ownerID, Name: "Food", Kind: category.KindExpense, Active: true}

	type args struct {
		actor  user.Actor
		params category.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *category.MockRepository)
		wantErr   error
		wantValid bool
		wantColor string
	}

	tests := []testCase{
		{
			name: "DefaultColor",
			args: args{actor: member, params: category.CreateParams{Name: "  Transport ", Kind: category.KindExpense}},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().ListCategories(gomock.Any(), gomock.Any()).Return([]*category.Category{existing}, nil)
				m.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantColor: category.DefaultColor,
		},
		{
			name: "DuplicateName",
			args: args{actor: member, params: category.CreateParams{Name: "Food ", Kind: category.KindExpense}},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().ListCategories(gomock.Any(), gomock.Any()).Return([]*category.Category{existing}, nil)
			},
			wantErr: category.ErrDuplicate,
		},
		{
			name: "DifferentCaseIsDistinct",
			args: args{actor: member, params: category.CreateParams{Name: "food", Kind: category.KindExpense, Color: "#112233"}},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().ListCategories(gomock.Any(), gomock.Any()).Return([]*category.Category{existing}, nil)
				m.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantColor: "#112233",
		},
		{
			name:    "MemberForOtherUser",
			args:    args{actor: member, params: category.CreateParams{OwnerUserID: uuid.New(), Name: "Food", Kind: category.KindExpense}},
			wantErr: user.ErrForbidden,
		},
		{
			name:      "InvalidColor",
			args:      args{actor: member, params: category.CreateParams{Name: "Food", Kind: category.KindExpense, Color: "red"}},
			wantValid: true,
		},
		{
			name:      "InvalidKind",
			args:      args{actor: member, params: category.CreateParams{Name: "Food", Kind: "savings"}},
			wantValid: true,
		},
		{
			name: "ListFails",
			args: args{actor: admin, params: category.CreateParams{OwnerUserID: ownerID, Name: "Food", Kind: category.KindExpense}},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().ListCategories(gomock.Any(), gomock.Any()).Return(nil, dbErr)
			},
			wantErr: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := category.NewService(repo).Create(context.Background(), tt.args.actor, tt.args.params)

			if tt.wantValid {
				assert.True(t, validation.Is(err), "expected validation error, got %v", err)
				return
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantColor, got.Color)
			assert.True(t, got.Active)
			assert.Equal(t, ownerID, got.OwnerUserID)
		})
	}
}

func TestService_Create_DuplicateReportsExisting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	existing := &category.Category{ID: uuid.New(), OwnerUserID: ownerID, Name: "Food", Kind: category.KindExpense, Active: true}

	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().ListCategories(gomock.Any(), category.ListFilter{OwnerUserID: &ownerID}).
		Return([]*category.Category{existing}, nil)

	_, err := category.NewService(repo).Create(context.Background(), member,
		category.CreateParams{Name: "Food", Kind: category.KindExpense})

	var dup *category.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, existing.ID, dup.Existing.ID)
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	current := func() *category.Category {
		return &category.Category{ID: id, OwnerUserID: ownerID, Name: "Food", Kind: category.KindExpense, Color: "#000000", Active: true}
	}

	income := category.KindIncome
	budgetErr := errors.New("db down")
	sameName := "Food"
	otherName := "Groceries"

	type testCase struct {
		name      string
		params    category.UpdateParams
		setupMock func(m *category.MockRepository)
		wantErr   error
		wantValid bool
	}

	tests := []testCase{
		{
			name:   "KeepingOwnNameIsNotDuplicate",
			params: category.UpdateParams{Name: &sameName},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().GetCategory(gomock.Any(), id).Return(current(), nil)
				m.EXPECT().ListCategories(gomock.Any(), gomock.Any()).Return([]*category.Category{current()}, nil)
				m.EXPECT().UpdateCategory(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "RenameIntoExisting",
			params: category.UpdateParams{Name: &otherName},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().GetCategory(gomock.Any(), id).Return(current(), nil)
				m.EXPECT().ListCategories(gomock.Any(), gomock.Any()).Return([]*category.Category{
					current(),
					{ID: uuid.New(), OwnerUserID: ownerID, Name: "Groceries", Active: true},
				}, nil)
			},
			wantErr: category.ErrDuplicate,
		},
		{
			name:   "KindChangeWithTransactions",
			params: category.UpdateParams{Kind: &income},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().GetCategory(gomock.Any(), id).Return(current(), nil)
				m.EXPECT().CountTransactions(gomock.Any(), id).Return(2, nil)
			},
			wantValid: true,
		},
		{
			name:   "KindChangeWithoutTransactions",
			params: category.UpdateParams{Kind: &income},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().GetCategory(gomock.Any(), id).Return(current(), nil)
				m.EXPECT().CountTransactions(gomock.Any(), id).Return(0, nil)
				m.EXPECT().ListBudgetRefs(gomock.Any(), id).Return(nil, nil)
				m.EXPECT().ListCategories(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.EXPECT().UpdateCategory(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *category.Category) error {
						assert.Equal(t, category.KindIncome, c.Kind)
						return nil
					})
			},
		},
		{
			name:   "KindChangeWithBudgets",
			params: category.UpdateParams{Kind: &income},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().GetCategory(gomock.Any(), id).Return(current(), nil)
				m.EXPECT().CountTransactions(gomock.Any(), id).Return(0, nil)
				m.EXPECT().ListBudgetRefs(gomock.Any(), id).Return([]category.BudgetRef{{ID: uuid.New(), OwnerUserID: ownerID}}, nil)
			},
			wantValid: true,
		},
		{
			name:   "KindChangeBudgetLookupFails",
			params: category.UpdateParams{Kind: &income},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().GetCategory(gomock.Any(), id).Return(current(), nil)
				m.EXPECT().CountTransactions(gomock.Any(), id).Return(0, nil)
				m.EXPECT().ListBudgetRefs(gomock.Any(), id).Return(nil, budgetErr)
			},
			wantErr: budgetErr,
		},
		{
			name:   "NotFound",
			params: category.UpdateParams{Name: &otherName},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().GetCategory(gomock.Any(), id).Return(nil, category.ErrNotFound)
			},
			wantErr: category.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := category.NewService(repo).Update(context.Background(), member, id, tt.params)

			if tt.wantValid {
				assert.True(t, validation.Is(err), "expected validation error, got %v", err)
				return
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
		})
	}
}

func TestService_Get_Forbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().GetCategory(gomock.Any(), id).
		Return(&category.Category{ID: id, OwnerUserID: uuid.New()}, nil)

	_, err := category.NewService(repo).Get(context.Background(), member, id)
	assert.ErrorIs(t, err, user.ErrForbidden)
}

func TestService_List_MemberScopedToSelf(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	other := uuid.New()
	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().ListCategories(gomock.Any(), category.ListFilter{OwnerUserID: &ownerID}).Return(nil, nil)

	_, err := category.NewService(repo).List(context.Background(), member, category.ListFilter{OwnerUserID: &other})
	assert.NoError(t, err)
}

func TestService_Reactivate_NameTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().GetCategory(gomock.Any(), id).
		Return(&category.Category{ID: id, OwnerUserID: ownerID, Name: "Food", Kind: category.KindExpense}, nil)
	repo.EXPECT().ListCategories(gomock.Any(), gomock.Any()).
		Return([]*category.Category{{ID: uuid.New(), OwnerUserID: ownerID, Name: "Food", Active: true}}, nil)

	_, err := category.NewService(repo).Reactivate(context.Background(), member, id)
	assert.ErrorIs(t, err, category.ErrDuplicate)
}

func TestService_Delete(t *testing.T) {
	c := &category.Category{ID: uuid.New(), OwnerUserID: ownerID, Name: "Transport", Kind: category.KindExpense, Active: true}
	b1 := category.BudgetRef{ID: uuid.New(), OwnerUserID: ownerID}
	b2 := category.BudgetRef{ID: uuid.New(), OwnerUserID: ownerID}
	dbErr := errors.New("db error")

	type testCase struct {
		name       string
		setupMock  func(m *category.MockRepository, tx *category.MockCascadeTx)
		wantAction category.LifecycleAction
		wantErr    error
		wantRaw    error
	}

	tests := []testCase{
		{
			name: "DeactivatesWhenTransactionsExist",
			setupMock: func(m *category.MockRepository, tx *category.MockCascadeTx) {
				m.EXPECT().GetCategory(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().CountTransactions(gomock.Any(), c.ID).Return(5, nil)
				m.EXPECT().BeginCascade(gomock.Any()).Return(tx, nil)
				tx.EXPECT().SetActive(gomock.Any(), c.ID, false).Return(nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantAction: category.ActionDeactivate,
		},
		{
			name: "CascadesBudgetsThenCategory",
			setupMock: func(m *category.MockRepository, tx *category.MockCascadeTx) {
				m.EXPECT().GetCategory(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().CountTransactions(gomock.Any(), c.ID).Return(0, nil)
				m.EXPECT().ListBudgetRefs(gomock.Any(), c.ID).Return([]category.BudgetRef{b1, b2}, nil)
				m.EXPECT().BeginCascade(gomock.Any()).Return(tx, nil)
				gomock.InOrder(
					tx.EXPECT().DeleteBudget(gomock.Any(), b1.ID).Return(nil),
					tx.EXPECT().DeleteBudget(gomock.Any(), b2.ID).Return(nil),
					tx.EXPECT().DeleteCategory(gomock.Any(), c.ID).Return(nil),
					tx.EXPECT().Commit().Return(nil),
				)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantAction: category.ActionHardDelete,
		},
		{
			name: "CountFailsClosed",
			setupMock: func(m *category.MockRepository, _ *category.MockCascadeTx) {
				m.EXPECT().GetCategory(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().CountTransactions(gomock.Any(), c.ID).Return(0, dbErr)
			},
			wantRaw: dbErr,
		},
		{
			name: "BudgetLookupFailsClosed",
			setupMock: func(m *category.MockRepository, _ *category.MockCascadeTx) {
				m.EXPECT().GetCategory(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().CountTransactions(gomock.Any(), c.ID).Return(0, nil)
				m.EXPECT().ListBudgetRefs(gomock.Any(), c.ID).Return(nil, dbErr)
			},
			wantRaw: dbErr,
		},
		{
			name: "StepFailureRollsBack",
			setupMock: func(m *category.MockRepository, tx *category.MockCascadeTx) {
				m.EXPECT().GetCategory(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().CountTransactions(gomock.Any(), c.ID).Return(0, nil)
				m.EXPECT().ListBudgetRefs(gomock.Any(), c.ID).Return([]category.BudgetRef{b1, b2}, nil)
				m.EXPECT().BeginCascade(gomock.Any()).Return(tx, nil)
				tx.EXPECT().DeleteBudget(gomock.Any(), b1.ID).Return(nil)
				tx.EXPECT().DeleteBudget(gomock.Any(), b2.ID).Return(dbErr)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: category.ErrInconsistentCascade,
			wantRaw: dbErr,
		},
		{
			name: "SingleStepFailureIsPlain",
			setupMock: func(m *category.MockRepository, tx *category.MockCascadeTx) {
				m.EXPECT().GetCategory(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().CountTransactions(gomock.Any(), c.ID).Return(0, nil)
				m.EXPECT().ListBudgetRefs(gomock.Any(), c.ID).Return(nil, nil)
				m.EXPECT().BeginCascade(gomock.Any()).Return(tx, nil)
				tx.EXPECT().DeleteCategory(gomock.Any(), c.ID).Return(dbErr)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantRaw: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			tx := category.NewMockCascadeTx(ctrl)
			tt.setupMock(repo, tx)

			got, err := category.NewService(repo).Delete(context.Background(), member, c.ID)

			if tt.wantErr != nil || tt.wantRaw != nil {
				require.Error(t, err)

				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)

					var cascadeErr *category.CascadeError
					require.ErrorAs(t, err, &cascadeErr)
					assert.Equal(t, b2.ID, cascadeErr.Step.TargetID)
				} else {
					assert.NotErrorIs(t, err, category.ErrInconsistentCascade)
				}

				if tt.wantRaw != nil {
					assert.ErrorIs(t, err, tt.wantRaw)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, got.Action)
		})
	}
}
