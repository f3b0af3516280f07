package repo

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentdeck/agentdeck/internal/clock"
	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/store"
)

// activityCap is the number of entries the activity log retains. Older
// entries are dropped on append.
const activityCap = 500

// ActivityLog is the append-only history of human-readable narration
// events. Entries are immutable once written; the log is truncated to the
// newest 500 on every append.
//
// Known limitation: readers track their position as a plain index into the
// list, which truncation silently shifts. A cursor older than the
// truncation window returns a different slice than the caller expects.
// Preserved for compatibility with existing pollers.
type ActivityLog struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry

	store     *store.Store
	clock     clock.Clock
	broadcast Broadcaster
	logger    zerolog.Logger
}

// NewActivityLog loads the persisted log, if any.
func NewActivityLog(s *store.Store, c clock.Clock, b Broadcaster, logger zerolog.Logger) *ActivityLog {
	l := &ActivityLog{store: s, clock: c, broadcast: b, logger: logger}
	l.store.Load("activity", &l.entries)
	if len(l.entries) > activityCap {
		l.entries = l.entries[len(l.entries)-activityCap:]
	}
	return l
}

// Append stamps the current time, appends, truncates to the cap, persists,
// and broadcasts the new entry.
func (l *ActivityLog) Append(message string) (domain.ActivityEntry, error) {
	l.mu.Lock()
	entry := domain.ActivityEntry{
		Timestamp: domain.Timestamp(l.clock.Now()),
		Message:   message,
	}
	l.entries = append(l.entries, entry)
	if len(l.entries) > activityCap {
		l.entries = l.entries[len(l.entries)-activityCap:]
	}
	err := l.store.Save("activity", l.entries)
	l.mu.Unlock()

	if err != nil {
		return domain.ActivityEntry{}, err
	}
	l.broadcast.Broadcast(domain.Event{Type: domain.EventActivity, Data: entry})
	return entry, nil
}

// Since returns the suffix of the log starting at index. Out-of-range
// indices clamp to an empty slice.
func (l *ActivityLog) Since(index int) []domain.ActivityEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 {
		index = 0
	}
	if index > len(l.entries) {
		index = len(l.entries)
	}
	out := make([]domain.ActivityEntry, len(l.entries)-index)
	copy(out, l.entries[index:])
	return out
}

// Recent returns the newest n entries in chronological order.
func (l *ActivityLog) Recent(n int) []domain.ActivityEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]domain.ActivityEntry, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}
