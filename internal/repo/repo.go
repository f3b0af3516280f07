// Package repo implements the entity repositories: the owning components
// for each collection's in-memory state and its CRUD rules.
//
// Every repository guards its collection with a mutex held across the full
// read-modify-write-persist sequence, so two concurrent mutations of the
// same collection serialize instead of producing a lost update. A mutation
// returns success only after the updated collection is durable on disk.
package repo

import "github.com/agentdeck/agentdeck/internal/domain"

// Broadcaster delivers an event to every connected live subscriber,
// best-effort. Implemented by the hub; a Nop implementation serves tests.
type Broadcaster interface {
	Broadcast(event domain.Event)
}

// NopBroadcaster discards all events.
type NopBroadcaster struct{}

// Broadcast implements Broadcaster.
func (NopBroadcaster) Broadcast(domain.Event) {}

var _ Broadcaster = NopBroadcaster{}
