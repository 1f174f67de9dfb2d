package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/matching"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectMappingColumns = `id, owner_user_id, raw_pattern, preferred_description, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMapping(s scanner) (*matching.Mapping, error) {
	var m matching.Mapping
	if err := s.Scan(&m.ID, &m.OwnerUserID, &m.RawPattern, &m.PreferredDescription, &m.CreatedAt); err != nil {
		return nil, err
	}

	return &m, nil
}

func (s *Store) FindMatch(ctx context.Context, owner uuid.UUID, rawDescription string) (string, error) {
	query := `
		SELECT preferred_description
		FROM description_mappings
		WHERE owner_user_id = $1 AND $2 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var preferred string

	err := s.db.QueryRowContext(ctx, query, owner, rawDescription).Scan(&preferred)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return preferred, nil
}

func (s *Store) CreateMapping(ctx context.Context, m *matching.Mapping) error {
	query := `
		INSERT INTO description_mappings (owner_user_id, raw_pattern, preferred_description, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, m.OwnerUserID, m.RawPattern, m.PreferredDescription).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return matching.ErrDuplicate
		}

		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}

func (s *Store) GetMapping(ctx context.Context, id uuid.UUID) (*matching.Mapping, error) {
	query := `SELECT ` + selectMappingColumns + ` FROM description_mappings WHERE id = $1`

	m, err := scanMapping(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, matching.ErrNotFound
		}

		return nil, fmt.Errorf("getting mapping: %w", err)
	}

	return m, nil
}

func (s *Store) ListMappings(ctx context.Context, owner *uuid.UUID) ([]*matching.Mapping, error) {
	query := `SELECT ` + selectMappingColumns + ` FROM description_mappings`

	var args []any

	if owner != nil {
		query += ` WHERE owner_user_id = $1`

		args = append(args, *owner)
	}

	query += ` ORDER BY LOWER(raw_pattern) ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*matching.Mapping

	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}

	return mappings, nil
}

func (s *Store) DeleteMapping(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM description_mappings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	if n == 0 {
		return matching.ErrNotFound
	}

	return nil
}
