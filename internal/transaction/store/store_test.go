//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	categoryStore "github.com/MrJamesThe3rd/budgetkeeper/internal/category/store"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/database/dbtest"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction/store"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func TestStore(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	owner := dbtest.User(t, db, "owner@example.com")

	food := &category.Category{OwnerUserID: owner.ID, Name: "Food", Kind: category.KindExpense, Color: category.DefaultColor, Active: true}
	require.NoError(t, categoryStore.New(db).CreateCategory(ctx, food))

	s := store.New(db)

	tx := &transaction.Transaction{
		OwnerUserID:    owner.ID,
		CategoryID:     food.ID,
		Amount:         decimal.RequireFromString("12.34"),
		Type:           transaction.TypeExpense,
		Description:    "Lunch",
		RawDescription: "COMPRA REST 123",
		Date:           day("2025-03-10"),
	}
	require.NoError(t, s.CreateTransaction(ctx, tx))
	assert.NotEqual(t, "", tx.ID.String())

	later := &transaction.Transaction{
		OwnerUserID: owner.ID,
		CategoryID:  food.ID,
		Amount:      decimal.NewFromInt(5),
		Type:        transaction.TypeExpense,
		Description: "Coffee",
		Date:        day("2025-04-02"),
	}
	require.NoError(t, s.CreateTransaction(ctx, later))

	t.Run("GetTransaction loads the category name", func(t *testing.T) {
		got, err := s.GetTransaction(ctx, tx.ID)
		require.NoError(t, err)

		assert.Equal(t, "Food", got.CategoryName)
		assert.True(t, got.Amount.Equal(tx.Amount))
		assert.Equal(t, "COMPRA REST 123", got.RawDescription)
		assert.True(t, got.Date.Equal(day("2025-03-10")))
	})

	t.Run("ListTransactions filters by date range", func(t *testing.T) {
		start, end := day("2025-03-01"), day("2025-03-31")

		got, err := s.ListTransactions(ctx, transaction.ListFilter{OwnerUserID: &owner.ID, StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Lunch", got[0].Description)

		all, err := s.ListTransactions(ctx, transaction.ListFilter{OwnerUserID: &owner.ID})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("UpdateTransaction", func(t *testing.T) {
		tx.Description = "Team lunch"
		require.NoError(t, s.UpdateTransaction(ctx, tx))
		assert.NotNil(t, tx.UpdatedAt)

		got, err := s.GetTransaction(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, "Team lunch", got.Description)
	})

	t.Run("DeleteTransaction", func(t *testing.T) {
		require.NoError(t, s.DeleteTransaction(ctx, later.ID))

		_, err := s.GetTransaction(ctx, later.ID)
		assert.ErrorIs(t, err, transaction.ErrNotFound)
	})
}
