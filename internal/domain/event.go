package domain

// EventType identifies a broadcast event on the subscription surface.
type EventType string

// Event types emitted by the broadcaster. The names are a compatibility
// contract with connected dashboards.
const (
	EventInit             EventType = "init"
	EventTaskCreated      EventType = "task_created"
	EventTaskUpdated      EventType = "task_updated"
	EventTaskDeleted      EventType = "task_deleted"
	EventTasksArchived    EventType = "tasks_archived"
	EventAgentUpdated     EventType = "agent_updated"
	EventAgentRemoved     EventType = "agent_removed"
	EventNoteAdded        EventType = "note_added"
	EventNoteUpdated      EventType = "note_updated"
	EventNoteDeleted      EventType = "note_deleted"
	EventScheduledAdded   EventType = "scheduled_added"
	EventScheduledDeleted EventType = "scheduled_deleted"
	EventMetricsUpdated   EventType = "metrics_updated"
	EventMoodUpdated      EventType = "mood_updated"
	EventActivity         EventType = "activity"
	EventFeed             EventType = "feed"
	EventFeedCleared      EventType = "feed_cleared"
	EventStatusUpdate     EventType = "status_update"
	EventPong             EventType = "pong"
)

// Event is the broadcast envelope delivered to every subscriber.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// Snapshot is the full current state sent to a subscriber on connect:
// all tasks, all agents, and the most recent activity entries.
type Snapshot struct {
	Tasks    []Task          `json:"tasks"`
	Agents   []Agent         `json:"agents"`
	Activity []ActivityEntry `json:"activity"`
}
