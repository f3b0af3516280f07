package domain

// Busy status labels. An agent carrying one of these is considered actively
// working; everything else (Idle, Standby, custom labels) is not.
var busyStatuses = map[string]bool{
	"Working":    true,
	"Thinking":   true,
	"Checking":   true,
	"Typing":     true,
	"Delegating": true,
	"Heartbeat":  true,
	"Managing":   true,
}

// Idle statuses that clear an agent's working timer.
const (
	AgentStatusIdle    = "Idle"
	AgentStatusStandby = "Standby"
)

// IsBusyStatus reports whether a status label counts as busy.
func IsBusyStatus(status string) bool {
	return busyStatuses[status]
}

// Agent is one collaborating agent's presence record. Agents are upserted:
// sub-agents register themselves implicitly on their first status report,
// so updating an unknown id creates it rather than failing.
//
// StartedWorkingAt is set when status transitions from a non-busy to a busy
// label and cleared on Idle/Standby. Busy-to-busy transitions leave it
// untouched so the dashboard's elapsed timer survives sub-status changes.
type Agent struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	Model            string `json:"model,omitempty"`
	Role             string `json:"role,omitempty"`
	Status           string `json:"status,omitempty"`
	StatusEmoji      string `json:"statusEmoji,omitempty"`
	CurrentTask      string `json:"currentTask,omitempty"`
	StartedWorkingAt string `json:"startedWorkingAt,omitempty"`
}

// AgentPatch is a partial update for an agent record. Nil fields are left
// unchanged. StartedWorkingAt is intentionally absent: it is derived from
// status transitions, never client-supplied.
type AgentPatch struct {
	Name        *string `json:"name,omitempty"`
	Model       *string `json:"model,omitempty"`
	Role        *string `json:"role,omitempty"`
	Status      *string `json:"status,omitempty"`
	StatusEmoji *string `json:"statusEmoji,omitempty"`
	CurrentTask *string `json:"currentTask,omitempty"`
}

// Apply merges the patch into the agent. Working-timer bookkeeping is the
// repository's responsibility.
func (p AgentPatch) Apply(a *Agent) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Model != nil {
		a.Model = *p.Model
	}
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.StatusEmoji != nil {
		a.StatusEmoji = *p.StatusEmoji
	}
	if p.CurrentTask != nil {
		a.CurrentTask = *p.CurrentTask
	}
}
