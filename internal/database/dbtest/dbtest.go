//go:build integration

// Package dbtest starts a throwaway Postgres for store tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/database"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	userStore "github.com/MrJamesThe3rd/budgetkeeper/internal/user/store"
)

const image = "postgres:16-alpine"

// New starts a migrated database that lives as long as the test.
func New(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	ctr, err := postgres.Run(ctx, image,
		postgres.WithDatabase("budgetkeeper"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres: %v", err)
		}
	})

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(connStr))

	db, err := database.New(ctx, connStr, database.Pool{})
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}

// User inserts a member with the given email.
func User(t *testing.T, db *sql.DB, email string) *user.User {
	t.Helper()

	u := &user.User{
		Name:         "Test",
		Email:        email,
		Role:         user.RoleMember,
		PasswordHash: "not-a-real-hash",
	}

	require.NoError(t, userStore.New(db).CreateUser(context.Background(), u))

	return u
}
