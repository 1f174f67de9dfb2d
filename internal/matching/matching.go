// Package matching remembers how a user prefers to name the noisy descriptions
// found in bank statements.
package matching

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("mapping not found")
	ErrDuplicate = errors.New("mapping already exists")
)

// Mapping rewrites any raw description containing RawPattern, compared
// case-insensitively, to PreferredDescription.
type Mapping struct {
	ID                   uuid.UUID
	OwnerUserID          uuid.UUID
	RawPattern           string
	PreferredDescription string
	CreatedAt            time.Time
}
