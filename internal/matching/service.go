package matching

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the preferred description of the longest pattern
	// contained in rawDescription, or "" when none matches.
	FindMatch(ctx context.Context, owner uuid.UUID, rawDescription string) (string, error)
	CreateMapping(ctx context.Context, mapping *Mapping) error
	GetMapping(ctx context.Context, id uuid.UUID) (*Mapping, error)
	ListMappings(ctx context.Context, owner *uuid.UUID) ([]*Mapping, error)
	DeleteMapping(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type LearnParams struct {
	OwnerUserID          uuid.UUID
	RawPattern           string
	PreferredDescription string
}

// Suggest tries to find a preferred description for the given raw description.
// Returns empty string if no match found.
func (s *Service) Suggest(ctx context.Context, owner uuid.UUID, rawDescription string) (string, error) {
	if strings.TrimSpace(rawDescription) == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, owner, rawDescription)
}

// Learn remembers a new mapping between a raw pattern and a preferred description.
func (s *Service) Learn(ctx context.Context, actor user.Actor, params LearnParams) (*Mapping, error) {
	owner, err := actor.TargetOwner(params.OwnerUserID)
	if err != nil {
		return nil, err
	}

	m := &Mapping{
		OwnerUserID:          owner,
		RawPattern:           strings.TrimSpace(params.RawPattern),
		PreferredDescription: strings.TrimSpace(params.PreferredDescription),
	}

	var verrs validation.Errors

	if m.RawPattern == "" {
		verrs.Add("raw_pattern", "is required")
	}

	if m.PreferredDescription == "" {
		verrs.Add("preferred_description", "is required")
	}

	if err := verrs.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateMapping(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *Service) List(ctx context.Context, actor user.Actor, owner *uuid.UUID) ([]*Mapping, error) {
	return s.repo.ListMappings(ctx, actor.ScopeOwner(owner))
}

func (s *Service) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	m, err := s.repo.GetMapping(ctx, id)
	if err != nil {
		return err
	}

	if err := actor.Authorize(m.OwnerUserID); err != nil {
		return err
	}

	return s.repo.DeleteMapping(ctx, id)
}
