package matching

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/matching"
)

type mappingResponse struct {
	ID                   uuid.UUID `json:"id"`
	OwnerUserID          uuid.UUID `json:"owner_user_id"`
	RawPattern           string    `json:"raw_pattern"`
	PreferredDescription string    `json:"preferred_description"`
	CreatedAt            time.Time `json:"created_at"`
}

func toResponse(m *matching.Mapping) mappingResponse {
	return mappingResponse{
		ID:                   m.ID,
		OwnerUserID:          m.OwnerUserID,
		RawPattern:           m.RawPattern,
		PreferredDescription: m.PreferredDescription,
		CreatedAt:            m.CreatedAt,
	}
}
