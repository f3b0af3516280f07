package repo

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentdeck/agentdeck/internal/clock"
	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/store"
)

// Notes owns the note collection.
type Notes struct {
	mu    sync.Mutex
	notes []domain.Note

	store    *store.Store
	clock    clock.Clock
	activity *ActivityLog
	logger   zerolog.Logger
}

// NewNotes loads the persisted note collection, if any.
func NewNotes(s *store.Store, c clock.Clock, activity *ActivityLog, logger zerolog.Logger) *Notes {
	r := &Notes{store: s, clock: c, activity: activity, logger: logger}
	r.store.Load("notes", &r.notes)
	return r
}

// List returns a copy of the notes in insertion (approximately
// chronological) order.
func (r *Notes) List() []domain.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Note, len(r.notes))
	copy(out, r.notes)
	return out
}

// Add appends an unread note and narrates it.
func (r *Notes) Add(content string) (domain.Note, error) {
	note := domain.Note{
		ID:        domain.NewID(),
		Content:   content,
		CreatedAt: domain.Timestamp(r.clock.Now()),
	}

	r.mu.Lock()
	r.notes = append(r.notes, note)
	err := r.store.Save("notes", r.notes)
	if err != nil {
		r.notes = r.notes[:len(r.notes)-1]
	}
	r.mu.Unlock()
	if err != nil {
		return domain.Note{}, err
	}

	if _, aerr := r.activity.Append(fmt.Sprintf("📝 Note added: %s...", truncate(content, 50))); aerr != nil {
		r.logger.Warn().Err(aerr).Msg("failed to append activity entry")
	}
	return note, nil
}

// MarkRead flags the note as read, stamping readAt on the first mark only.
// An absent id is a no-op success with found=false.
func (r *Notes) MarkRead(id string) (domain.Note, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, n := range r.notes {
		if n.ID != id {
			continue
		}
		prev := r.notes[i]
		r.notes[i].Read = true
		if r.notes[i].ReadAt == "" {
			r.notes[i].ReadAt = domain.Timestamp(r.clock.Now())
		}
		if err := r.store.Save("notes", r.notes); err != nil {
			r.notes[i] = prev
			return domain.Note{}, true, err
		}
		return r.notes[i], true, nil
	}
	return domain.Note{}, false, nil
}

// Delete removes the note with the given id; an absent id is a no-op.
func (r *Notes) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.notes[:0]
	for _, n := range r.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	r.notes = kept
	return r.store.Save("notes", r.notes)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
