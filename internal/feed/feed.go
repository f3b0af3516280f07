// Package feed implements the live feed buffer: a bounded, day-scoped,
// append-only in-memory sequence of ephemeral narration entries. The feed
// is a rolling same-day window rather than a historical log; entries from
// previous UTC days are pruned on every post and every read, and nothing
// here is ever persisted.
package feed

import (
	"fmt"
	"strings"
	"sync"

	"github.com/agentdeck/agentdeck/internal/clock"
	"github.com/agentdeck/agentdeck/internal/domain"
	deckerrors "github.com/agentdeck/agentdeck/internal/errors"
)

// Read limits: at most MaxLimit entries per read, DefaultLimit when the
// caller does not say.
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Buffer is the in-memory feed store.
type Buffer struct {
	mu      sync.Mutex
	entries []domain.FeedEntry
	clock   clock.Clock
}

// New creates an empty feed buffer.
func New(c clock.Clock) *Buffer {
	return &Buffer{clock: c}
}

// Post validates the entry type, assigns an id, and appends. A caller-
// supplied timestamp is honored (allowing out-of-order backfill); an empty
// one is stamped with the current UTC time.
func (b *Buffer) Post(message, entryType, timestamp string) (domain.FeedEntry, error) {
	if !domain.IsValidFeedType(entryType) {
		return domain.FeedEntry{}, deckerrors.Wrapf(deckerrors.ErrInvalidFeedType,
			"%q is not one of: %s", entryType, strings.Join(domain.ValidFeedTypes(), ", "))
	}
	if timestamp == "" {
		timestamp = domain.Timestamp(b.clock.Now())
	}
	entry := domain.FeedEntry{
		ID:        domain.NewID(),
		Message:   message,
		Type:      entryType,
		Timestamp: timestamp,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.prune()
	b.entries = append(b.entries, entry)
	return entry, nil
}

// List returns entries with timestamp strictly greater than since (all
// entries when since is empty), at most limit of them. When more than
// limit qualify, the most recent limit entries are returned, in
// chronological order. Limits outside [1, MaxLimit] clamp; a zero limit
// means DefaultLimit.
func (b *Buffer) List(since string, limit int) []domain.FeedEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.prune()

	matched := make([]domain.FeedEntry, 0, len(b.entries))
	for _, e := range b.entries {
		if since == "" || e.Timestamp > since {
			matched = append(matched, e)
		}
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}

// Clear empties the buffer unconditionally and returns how many entries
// were dropped.
func (b *Buffer) Clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.entries)
	b.entries = nil
	return n
}

// InvalidTypeMessage is the client-facing rejection text for a bad type.
func InvalidTypeMessage() string {
	return fmt.Sprintf("Invalid type. Must be one of: %s", strings.Join(domain.ValidFeedTypes(), ", "))
}

// prune drops entries whose date component precedes the current UTC day.
// Must be called with the mutex held.
func (b *Buffer) prune() {
	today := domain.DateKey(domain.Timestamp(b.clock.Now()))
	kept := b.entries[:0]
	for _, e := range b.entries {
		if domain.DateKey(e.Timestamp) >= today {
			kept = append(kept, e)
		}
	}
	b.entries = kept
}
