package repo

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentdeck/agentdeck/internal/clock"
	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/store"
)

// Agents owns the agent presence collection. Updates are upserts: sub-agents
// register themselves implicitly on their first status report, so an unknown
// id creates a record rather than failing. This asymmetry with the other
// repositories is deliberate.
type Agents struct {
	mu     sync.Mutex
	agents []domain.Agent

	store  *store.Store
	clock  clock.Clock
	logger zerolog.Logger
}

// NewAgents loads the persisted agent collection. A missing snapshot seeds
// the manager agent so a fresh deployment starts with a populated roster.
func NewAgents(s *store.Store, c clock.Clock, logger zerolog.Logger) *Agents {
	r := &Agents{store: s, clock: c, logger: logger}
	if !r.store.Load("agents", &r.agents) {
		r.agents = []domain.Agent{{
			ID:     "manager-prime",
			Name:   "Deck Manager",
			Role:   "manager",
			Status: domain.AgentStatusIdle,
		}}
		if err := r.store.Save("agents", r.agents); err != nil {
			logger.Warn().Err(err).Msg("failed to persist seeded agent roster")
		}
	}
	return r
}

// List returns a copy of the roster.
func (r *Agents) List() []domain.Agent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Agent, len(r.agents))
	copy(out, r.agents)
	return out
}

// Update merges the patch into the agent with the given id, creating the
// record when absent. The working timer follows the status transition:
// non-busy to busy sets startedWorkingAt, Idle/Standby clears it, and
// busy-to-busy leaves it alone so elapsed timers survive sub-status changes.
// The returned agent is the stored record, including the resolved timer.
func (r *Agents) Update(id string, p domain.AgentPatch) (domain.Agent, error) {
	r.mu.Lock()

	idx := -1
	for i, a := range r.agents {
		if a.ID == id {
			idx = i
			break
		}
	}

	var agent domain.Agent
	if idx >= 0 {
		agent = r.agents[idx]
	} else {
		agent = domain.Agent{ID: id}
	}
	oldStatus := agent.Status
	p.Apply(&agent)

	if p.Status != nil {
		switch {
		case domain.IsBusyStatus(*p.Status):
			if !domain.IsBusyStatus(oldStatus) || agent.StartedWorkingAt == "" {
				agent.StartedWorkingAt = domain.Timestamp(r.clock.Now())
			}
		case *p.Status == domain.AgentStatusIdle || *p.Status == domain.AgentStatusStandby:
			agent.StartedWorkingAt = ""
		}
	}

	if idx >= 0 {
		prev := r.agents[idx]
		r.agents[idx] = agent
		if saveErr := r.store.Save("agents", r.agents); saveErr != nil {
			r.agents[idx] = prev
			r.mu.Unlock()
			return domain.Agent{}, saveErr
		}
	} else {
		r.agents = append(r.agents, agent)
		if saveErr := r.store.Save("agents", r.agents); saveErr != nil {
			r.agents = r.agents[:len(r.agents)-1]
			r.mu.Unlock()
			return domain.Agent{}, saveErr
		}
	}
	r.mu.Unlock()
	return agent, nil
}

// Remove deletes the agent with the given id; an absent id is a no-op.
func (r *Agents) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.agents[:0]
	for _, a := range r.agents {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	r.agents = kept
	return r.store.Save("agents", r.agents)
}
