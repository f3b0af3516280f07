package domain

import "github.com/google/uuid"

// NewID returns a fresh 8-character opaque token, the id format shared by
// tasks, notes, scheduled items and feed entries.
func NewID() string {
	return uuid.NewString()[:8]
}
