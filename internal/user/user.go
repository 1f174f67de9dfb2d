package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// Role gates cross-user visibility and edit rights.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type User struct {
	ID           uuid.UUID
	Name         string
	Surname      string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func (u *User) FullName() string {
	if u.Surname == "" {
		return u.Name
	}

	return u.Name + " " + u.Surname
}

func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// Actor is the identity an operation runs as.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess reports whether the actor may see or modify a record owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.UserID == ownerID
}

// Authorize returns ErrForbidden unless the actor may access ownerID's records.
func (a Actor) Authorize(ownerID uuid.UUID) error {
	if !a.CanAccess(ownerID) {
		return ErrForbidden
	}

	return nil
}

// ScopeOwner resolves which owner a list query should be restricted to.
// Members are always pinned to themselves; admins see everything unless they
// ask for a specific user.
func (a Actor) ScopeOwner(requested *uuid.UUID) *uuid.UUID {
	if !a.IsAdmin() {
		id := a.UserID
		return &id
	}

	return requested
}

// TargetOwner resolves who owns a record being created. Only admins may create
// on behalf of another user.
func (a Actor) TargetOwner(requested uuid.UUID) (uuid.UUID, error) {
	if requested == uuid.Nil || requested == a.UserID {
		return a.UserID, nil
	}

	if !a.IsAdmin() {
		return uuid.Nil, ErrForbidden
	}

	return requested, nil
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
