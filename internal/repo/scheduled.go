package repo

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentdeck/agentdeck/internal/clock"
	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/store"
)

// Scheduled owns the scheduled deliverable collection.
type Scheduled struct {
	mu    sync.Mutex
	items []domain.ScheduledItem

	store  *store.Store
	clock  clock.Clock
	logger zerolog.Logger
}

// NewScheduled loads the persisted scheduled collection, if any.
func NewScheduled(s *store.Store, c clock.Clock, logger zerolog.Logger) *Scheduled {
	r := &Scheduled{store: s, clock: c, logger: logger}
	r.store.Load("scheduled", &r.items)
	return r
}

// List returns a copy of the items.
func (r *Scheduled) List() []domain.ScheduledItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ScheduledItem, len(r.items))
	copy(out, r.items)
	return out
}

// AddParams are the caller-supplied fields for a new scheduled item.
// Zero values fall back to the item defaults.
type AddParams struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
	Icon     string `json:"icon"`
	Enabled  *bool  `json:"enabled"`
}

// Add appends a scheduled item with defaults applied.
func (r *Scheduled) Add(p AddParams) (domain.ScheduledItem, error) {
	item := domain.ScheduledItem{
		ID:        domain.NewID(),
		Name:      p.Name,
		Schedule:  p.Schedule,
		Icon:      p.Icon,
		Enabled:   true,
		CreatedAt: domain.Timestamp(r.clock.Now()),
	}
	if item.Schedule == "" {
		item.Schedule = "daily"
	}
	if item.Icon == "" {
		item.Icon = "📋"
	}
	if p.Enabled != nil {
		item.Enabled = *p.Enabled
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
	if err := r.store.Save("scheduled", r.items); err != nil {
		r.items = r.items[:len(r.items)-1]
		return domain.ScheduledItem{}, err
	}
	return item, nil
}

// Delete removes the item with the given id; an absent id is a no-op.
func (r *Scheduled) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	for _, item := range r.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return r.store.Save("scheduled", r.items)
}
