// Package models defines server-side data models persisted in the database.
package models

import "time"

// Status is the lifecycle state of a Character.
type Status string

const (
	StatusPending  Status = "pending"
	StatusTraining Status = "training"
	StatusReady    Status = "ready"
	StatusError    Status = "error"
)

// PlaceholderName is shown until analysis fills in the real name.
const PlaceholderName = "Processing..."

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusTraining, StatusReady, StatusError:
		return true
	}
	return false
}

// IsTerminal reports whether no automated transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusError
}

// Rank orders statuses along the lifecycle. Ready and Error share the
// terminal rank. Observers use it to drop out-of-order updates.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusTraining:
		return 1
	case StatusReady, StatusError:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next:
//
//	pending  -> training | error
//	training -> ready | error
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusTraining || next == StatusError
	case StatusTraining:
		return next == StatusReady || next == StatusError
	default:
		return false
	}
}

// Character is a user's uploaded subject and its derived analysis.
//
// ImagePreviewURL is a storage key, not a browsable URL. AdapterID stays nil
// until the character is ready.
type Character struct {
	ID              string
	OwnerID         string
	Status          Status
	CharacterName   string
	Description     string
	Keywords        []string
	ImagePreviewURL string
	AdapterID       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewCharacter returns a pending character with placeholder analysis fields.
func NewCharacter(id, ownerID, previewPath string) *Character {
	return &Character{
		ID:              id,
		OwnerID:         ownerID,
		Status:          StatusPending,
		CharacterName:   PlaceholderName,
		Keywords:        []string{},
		ImagePreviewURL: previewPath,
	}
}

// Clone returns a deep copy so callers can hand records to other goroutines.
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Keywords = append(make([]string, 0, len(c.Keywords)), c.Keywords...)
	if c.AdapterID != nil {
		id := *c.AdapterID
		cp.AdapterID = &id
	}
	return &cp
}
