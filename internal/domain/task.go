// Package domain provides shared domain types for the agentdeck dashboard
// backend. These types are used across all internal packages to ensure
// consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// JSON field names are camelCase to match the dashboard wire format, except
// for the metrics singleton, which historically uses snake_case.
package domain

import "encoding/json"

// Task statuses with defined lifecycle semantics. Status is an open set:
// callers may store additional labels, but only these four drive timestamp
// stamping and archival.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"
	TaskStatusArchive    = "archive"
)

// taskKnownFields enumerates the JSON keys owned by Task's typed fields.
// Anything else round-trips through Extra.
var taskKnownFields = map[string]bool{
	"id": true, "title": true, "description": true, "status": true,
	"priority": true, "assignedTo": true, "completedBy": true,
	"createdAt": true, "startedAt": true, "completedAt": true,
}

// Task represents a single unit of work on the dashboard board.
//
// StartedAt and CompletedAt are stamped exactly once: the first transition
// into in-progress sets StartedAt, the first transition into done or archive
// sets CompletedAt, and neither is ever overwritten afterwards.
//
// Clients attach arbitrary extra fields to tasks; those are preserved in
// Extra and inlined into the JSON object on marshal, so unknown keys survive
// a round trip without losing type safety on the known fields.
type Task struct {
	// ID is an 8-character opaque token assigned on creation.
	ID string

	Title       string
	Description string

	// Status is the board column label. See the TaskStatus constants for
	// the values with defined semantics.
	Status string

	Priority    string
	AssignedTo  string
	CompletedBy string

	// CreatedAt is stamped on creation. StartedAt and CompletedAt are
	// empty until their once-only stamping transition occurs.
	CreatedAt   string
	StartedAt   string
	CompletedAt string

	// Extra holds caller-supplied fields outside the known set.
	Extra map[string]any
}

// MarshalJSON inlines Extra into the task object. The nullable timestamps
// (startedAt, completedAt) are emitted as JSON null when unset, matching
// the stored document format.
func (t Task) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(t.Extra)+10)
	for k, v := range t.Extra {
		if !taskKnownFields[k] {
			obj[k] = v
		}
	}
	obj["id"] = t.ID
	obj["title"] = t.Title
	obj["description"] = t.Description
	obj["status"] = t.Status
	obj["priority"] = t.Priority
	obj["assignedTo"] = t.AssignedTo
	obj["completedBy"] = t.CompletedBy
	obj["createdAt"] = t.CreatedAt
	obj["startedAt"] = nullableString(t.StartedAt)
	obj["completedAt"] = nullableString(t.CompletedAt)
	return json.Marshal(obj)
}

// UnmarshalJSON splits the object into known fields and Extra.
func (t *Task) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.ID = stringField(obj, "id")
	t.Title = stringField(obj, "title")
	t.Description = stringField(obj, "description")
	t.Status = stringField(obj, "status")
	t.Priority = stringField(obj, "priority")
	t.AssignedTo = stringField(obj, "assignedTo")
	t.CompletedBy = stringField(obj, "completedBy")
	t.CreatedAt = stringField(obj, "createdAt")
	t.StartedAt = stringField(obj, "startedAt")
	t.CompletedAt = stringField(obj, "completedAt")
	t.Extra = nil
	for k, v := range obj {
		if taskKnownFields[k] {
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]any)
		}
		t.Extra[k] = v
	}
	return nil
}

// TaskPatch is a partial update for a task. Nil pointer fields are left
// unchanged; Extra keys are merged over the task's extension map.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssignedTo  *string
	CompletedBy *string

	// Extra holds unknown caller-supplied keys to merge.
	Extra map[string]any
}

// UnmarshalJSON splits a patch object into known pointer fields and Extra.
func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.Title = stringPtrField(obj, "title")
	p.Description = stringPtrField(obj, "description")
	p.Status = stringPtrField(obj, "status")
	p.Priority = stringPtrField(obj, "priority")
	p.AssignedTo = stringPtrField(obj, "assignedTo")
	p.CompletedBy = stringPtrField(obj, "completedBy")
	p.Extra = nil
	for k, v := range obj {
		if taskKnownFields[k] || k == "startedAt" || k == "completedAt" {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}
	return nil
}

// Apply merges the patch into the task. Timestamp stamping is the owning
// repository's responsibility, not the patch's.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.CompletedBy != nil {
		t.CompletedBy = *p.CompletedBy
	}
	for k, v := range p.Extra {
		if t.Extra == nil {
			t.Extra = make(map[string]any)
		}
		t.Extra[k] = v
	}
}

// IsActive reports whether the task occupies an active board column.
func (t Task) IsActive() bool {
	return t.Status == TaskStatusTodo || t.Status == TaskStatusInProgress
}

// IsCompleted reports whether the task reached a completed status.
func (t Task) IsCompleted() bool {
	return t.Status == TaskStatusDone || t.Status == TaskStatusArchive
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringField(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func stringPtrField(obj map[string]any, key string) *string {
	v, ok := obj[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
