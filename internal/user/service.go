package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/guard"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
	maxEmailLength    = 254
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) ([]*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, u *User) error
	CountUsers(ctx context.Context) (int, error)
}

type Service struct {
	repo Repository
	cost int
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcryptCost}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

type RegisterParams struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

type UpdateProfileParams struct {
	Name     *string
	Surname  *string
	Email    *string
	Password *string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if len(email) == 0 || len(email) > maxEmailLength {
		return validation.New("email", "must be between 1 and 254 characters")
	}

	if err := checkmail.ValidateFormat(email); err != nil {
		return validation.New("email", "invalid format")
	}

	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return validation.New("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	return nil
}

// Register creates a member account. The very first account becomes admin so
// a fresh install has someone able to manage other users.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	email := normalizeEmail(params.Email)

	var verrs validation.Errors
	if strings.TrimSpace(params.Name) == "" {
		verrs.Add("name", "is required")
	}

	if err := validateEmail(email); err != nil {
		verrs.Errors = append(verrs.Errors, err)
	}

	if err := validatePassword(params.Password); err != nil {
		verrs.Errors = append(verrs.Errors, err)
	}

	if err := verrs.Err(); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, email, nil); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	role := RoleMember
	if count == 0 {
		role = RoleAdmin
	}

	u := &User{
		Name:         strings.TrimSpace(params.Name),
		Surname:      strings.TrimSpace(params.Surname),
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, excludingID *uuid.UUID) error {
	matches, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("looking up email: %w", err)
	}

	records := make([]guard.Record[string], len(matches))
	for i, m := range matches {
		records[i] = guard.Record[string]{ID: m.ID, Key: normalizeEmail(m.Email)}
	}

	if guard.HasConflict(email, uuid.Nil, excludingID, records) {
		return ErrEmailTaken
	}

	return nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	matches, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	if len(matches) == 0 {
		return nil, ErrInvalidCredentials
	}

	u := matches[0]
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// Lookup finds a user by email without checking any password. Used by local
// tooling that already has database access.
func (s *Service) Lookup(ctx context.Context, email string) (*User, error) {
	matches, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	if len(matches) == 0 {
		return nil, ErrNotFound
	}

	return matches[0], nil
}

func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*User, error) {
	if err := actor.Authorize(id); err != nil {
		return nil, err
	}

	return s.repo.GetUser(ctx, id)
}

func (s *Service) List(ctx context.Context, actor Actor) ([]*User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	return s.repo.ListUsers(ctx)
}

func (s *Service) UpdateProfile(ctx context.Context, actor Actor, params UpdateProfileParams) (*User, error) {
	u, err := s.repo.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, validation.New("name", "is required")
		}

		u.Name = name
	}

	if params.Surname != nil {
		u.Surname = strings.TrimSpace(*params.Surname)
	}

	if params.Email != nil {
		email := normalizeEmail(*params.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}

		if err := s.ensureEmailFree(ctx, email, &u.ID); err != nil {
			return nil, err
		}

		u.Email = email
	}

	if params.Password != nil {
		if err := validatePassword(*params.Password); err != nil {
			return nil, err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(*params.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}

		u.PasswordHash = string(hash)
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return u, nil
}
