// Package guard detects records that would collide with a candidate being
// created or edited.
package guard

import "github.com/google/uuid"

// Record is the projection of an existing row the guard compares against.
type Record[K comparable] struct {
	ID          uuid.UUID
	Key         K
	ScopeUserID uuid.UUID
}

// FindConflict returns the first record with the same key and scope as the
// candidate. The record identified by excludingID is never a conflict, so edits
// do not collide with their own previous version.
func FindConflict[K comparable](candidate K, scopeUserID uuid.UUID, excludingID *uuid.UUID, existing []Record[K]) (Record[K], bool) {
	for _, r := range existing {
		if excludingID != nil && r.ID == *excludingID {
			continue
		}

		if r.Key == candidate && r.ScopeUserID == scopeUserID {
			return r, true
		}
	}

	return Record[K]{}, false
}

func HasConflict[K comparable](candidate K, scopeUserID uuid.UUID, excludingID *uuid.UUID, existing []Record[K]) bool {
	_, found := FindConflict(candidate, scopeUserID, excludingID, existing)
	return found
}
