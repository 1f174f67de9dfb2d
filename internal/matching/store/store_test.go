//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/database/dbtest"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/matching"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/matching/store"
)

func TestStore(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	alice := dbtest.User(t, db, "alice@example.com")
	bob := dbtest.User(t, db, "bob@example.com")

	s := store.New(db)

	create := func(owner uuid.UUID, pattern, preferred string) *matching.Mapping {
		m := &matching.Mapping{OwnerUserID: owner, RawPattern: pattern, PreferredDescription: preferred}
		require.NoError(t, s.CreateMapping(ctx, m))

		return m
	}

	create(alice.ID, "CONTINENTE", "Groceries")
	create(alice.ID, "CONTINENTE BOM DIA", "Corner shop")
	create(bob.ID, "UBER", "Taxi")

	t.Run("FindMatch prefers the longest pattern", func(t *testing.T) {
		got, err := s.FindMatch(ctx, alice.ID, "COMPRA continente bom dia lisboa")
		require.NoError(t, err)
		assert.Equal(t, "Corner shop", got)

		got, err = s.FindMatch(ctx, alice.ID, "COMPRA CONTINENTE PORTO")
		require.NoError(t, err)
		assert.Equal(t, "Groceries", got)
	})

	t.Run("FindMatch is scoped to the owner", func(t *testing.T) {
		got, err := s.FindMatch(ctx, alice.ID, "UBER TRIP")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("CreateMapping rejects a duplicate pattern ignoring case", func(t *testing.T) {
		err := s.CreateMapping(ctx, &matching.Mapping{
			OwnerUserID: alice.ID, RawPattern: "continente", PreferredDescription: "Other",
		})
		assert.ErrorIs(t, err, matching.ErrDuplicate)
	})

	t.Run("ListMappings filters by owner", func(t *testing.T) {
		all, err := s.ListMappings(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		mine, err := s.ListMappings(ctx, &alice.ID)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, "CONTINENTE", mine[0].RawPattern)
	})

	t.Run("DeleteMapping", func(t *testing.T) {
		m := create(bob.ID, "NETFLIX", "Streaming")

		require.NoError(t, s.DeleteMapping(ctx, m.ID))

		_, err := s.GetMapping(ctx, m.ID)
		assert.ErrorIs(t, err, matching.ErrNotFound)

		assert.ErrorIs(t, s.DeleteMapping(ctx, m.ID), matching.ErrNotFound)
	})
}
