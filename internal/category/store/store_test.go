//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/category/store"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/database/dbtest"
)

func TestStore(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	owner := dbtest.User(t, db, "owner@example.com")
	s := store.New(db)

	newCategory := func(name string) *category.Category {
		return &category.Category{
			OwnerUserID: owner.ID,
			Name:        name,
			Kind:        category.KindExpense,
			Color:       category.DefaultColor,
			Active:      true,
		}
	}

	food := newCategory("Food")
	require.NoError(t, s.CreateCategory(ctx, food))

	t.Run("active names are unique", func(t *testing.T) {
		err := s.CreateCategory(ctx, newCategory("Food"))
		assert.ErrorIs(t, err, category.ErrDuplicate)
	})

	t.Run("names differing in case are distinct", func(t *testing.T) {
		require.NoError(t, s.CreateCategory(ctx, newCategory("food")))
	})

	t.Run("cascade deactivates and hides from the default listing", func(t *testing.T) {
		tx, err := s.BeginCascade(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.SetActive(ctx, food.ID, false))
		require.NoError(t, tx.Commit())

		active, err := s.ListCategories(ctx, category.ListFilter{OwnerUserID: &owner.ID})
		require.NoError(t, err)

		for _, c := range active {
			assert.NotEqual(t, food.ID, c.ID)
		}

		all, err := s.ListCategories(ctx, category.ListFilter{OwnerUserID: &owner.ID, IncludeInactive: true})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("an inactive name can be reused", func(t *testing.T) {
		require.NoError(t, s.CreateCategory(ctx, newCategory("Food")))
	})

	t.Run("rolled back cascade leaves the row", func(t *testing.T) {
		c := newCategory("Travel")
		require.NoError(t, s.CreateCategory(ctx, c))

		tx, err := s.BeginCascade(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.DeleteCategory(ctx, c.ID))
		require.NoError(t, tx.Rollback())

		got, err := s.GetCategory(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Travel", got.Name)
	})
}
