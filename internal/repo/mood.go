package repo

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentdeck/agentdeck/internal/clock"
	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/store"
)

// MoodRepo owns the mood singleton, fully replaced on each update.
type MoodRepo struct {
	mu   sync.Mutex
	mood domain.Mood

	store    *store.Store
	clock    clock.Clock
	activity *ActivityLog
	logger   zerolog.Logger
}

// NewMood loads the persisted mood singleton, if any.
func NewMood(s *store.Store, c clock.Clock, activity *ActivityLog, logger zerolog.Logger) *MoodRepo {
	r := &MoodRepo{store: s, clock: c, activity: activity, logger: logger}
	r.store.Load("mood", &r.mood)
	return r
}

// Get returns the current mood document.
func (r *MoodRepo) Get() domain.Mood {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mood
}

// Set replaces the mood document and narrates the change.
func (r *MoodRepo) Set(mood string) (domain.Mood, error) {
	now := domain.Timestamp(r.clock.Now())

	r.mu.Lock()
	prev := r.mood
	r.mood = domain.Mood{Mood: &mood, LastUpdated: &now}
	err := r.store.Save("mood", r.mood)
	if err != nil {
		r.mood = prev
	}
	updated := r.mood
	r.mu.Unlock()
	if err != nil {
		return domain.Mood{}, err
	}

	if _, aerr := r.activity.Append(fmt.Sprintf("🧠 Mood updated to: %s", mood)); aerr != nil {
		r.logger.Warn().Err(aerr).Msg("failed to append activity entry")
	}
	return updated, nil
}
