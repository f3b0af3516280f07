package repo

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentdeck/agentdeck/internal/clock"
	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/store"
)

// Tasks owns the task collection. All mutations hold the repository mutex
// across the full mutate-and-persist sequence and return only after the
// updated collection is durable.
type Tasks struct {
	mu    sync.Mutex
	tasks []domain.Task

	store    *store.Store
	clock    clock.Clock
	activity *ActivityLog
	logger   zerolog.Logger
}

// NewTasks loads the persisted task collection, if any.
func NewTasks(s *store.Store, c clock.Clock, activity *ActivityLog, logger zerolog.Logger) *Tasks {
	t := &Tasks{store: s, clock: c, activity: activity, logger: logger}
	t.store.Load("tasks", &t.tasks)
	return t
}

// List returns the tasks, optionally filtered to active board columns
// (todo, in-progress).
func (r *Tasks) List(activeOnly bool) []domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if activeOnly && !t.IsActive() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// All returns a copy of the full collection, for snapshots and the
// history engine.
func (r *Tasks) All() []domain.Task {
	return r.List(false)
}

// Create assigns a fresh id, stamps createdAt, and back-fills the lifecycle
// timestamps when the initial status is already past them.
func (r *Tasks) Create(p domain.TaskPatch) (domain.Task, error) {
	now := domain.Timestamp(r.clock.Now())
	task := domain.Task{
		ID:        domain.NewID(),
		Status:    domain.TaskStatusTodo,
		CreatedAt: now,
	}
	p.Apply(&task)
	if task.Status == domain.TaskStatusInProgress {
		task.StartedAt = now
	}
	if task.IsCompleted() {
		task.CompletedAt = now
	}

	r.mu.Lock()
	r.tasks = append(r.tasks, task)
	err := r.store.Save("tasks", r.tasks)
	if err != nil {
		// Roll back the in-memory append so memory and disk agree.
		r.tasks = r.tasks[:len(r.tasks)-1]
	}
	r.mu.Unlock()
	if err != nil {
		return domain.Task{}, err
	}

	r.narrate(fmt.Sprintf("📥 New task: %s", titleOrUntitled(task.Title)))
	return task, nil
}

// Update merges the patch into the task with the given id. A status change
// stamps startedAt/completedAt once-only and narrates the transition. An
// absent id is a no-op reported via found=false.
func (r *Tasks) Update(id string, p domain.TaskPatch) (domain.Task, bool, error) {
	var narration string

	r.mu.Lock()
	idx := r.indexOf(id)
	if idx < 0 {
		r.mu.Unlock()
		return domain.Task{}, false, nil
	}

	task := r.tasks[idx]
	oldStatus := task.Status
	p.Apply(&task)

	if p.Status != nil && *p.Status != oldStatus {
		now := domain.Timestamp(r.clock.Now())
		if task.Status == domain.TaskStatusInProgress && task.StartedAt == "" {
			task.StartedAt = now
		}
		if task.IsCompleted() && task.CompletedAt == "" {
			task.CompletedAt = now
		}
		narration = fmt.Sprintf("📋 Task moved to %s: %s", task.Status, titleOrUntitled(task.Title))
	}

	prev := r.tasks[idx]
	r.tasks[idx] = task
	err := r.store.Save("tasks", r.tasks)
	if err != nil {
		r.tasks[idx] = prev
	}
	r.mu.Unlock()
	if err != nil {
		return domain.Task{}, true, err
	}

	if narration != "" {
		r.narrate(narration)
	}
	return task, true, nil
}

// Delete removes the task with the given id. An absent id is a no-op
// success with found=false.
func (r *Tasks) Delete(id string) (domain.Task, bool, error) {
	r.mu.Lock()
	idx := r.indexOf(id)
	if idx < 0 {
		r.mu.Unlock()
		return domain.Task{}, false, nil
	}
	task := r.tasks[idx]
	tasks := make([]domain.Task, 0, len(r.tasks)-1)
	tasks = append(tasks, r.tasks[:idx]...)
	tasks = append(tasks, r.tasks[idx+1:]...)
	prev := r.tasks
	r.tasks = tasks
	err := r.store.Save("tasks", r.tasks)
	if err != nil {
		r.tasks = prev
	}
	r.mu.Unlock()
	if err != nil {
		return domain.Task{}, true, err
	}

	r.narrate(fmt.Sprintf("🗑️ Task deleted: %s", titleOrUntitled(task.Title)))
	return task, true, nil
}

// ArchiveOlderThan transitions done tasks whose completedAt precedes the
// cutoff to archive. It persists and narrates only when something changed,
// so a sweep with nothing eligible is a silent no-op.
func (r *Tasks) ArchiveOlderThan(age time.Duration) (int, error) {
	cutoff := domain.Timestamp(r.clock.Now().Add(-age))

	r.mu.Lock()
	var swept []int
	for i, t := range r.tasks {
		if t.Status == domain.TaskStatusDone && t.CompletedAt != "" && t.CompletedAt < cutoff {
			r.tasks[i].Status = domain.TaskStatusArchive
			swept = append(swept, i)
		}
	}
	var err error
	if len(swept) > 0 {
		if err = r.store.Save("tasks", r.tasks); err != nil {
			for _, i := range swept {
				r.tasks[i].Status = domain.TaskStatusDone
			}
		}
	}
	r.mu.Unlock()
	if err != nil {
		return 0, err
	}

	if len(swept) > 0 {
		r.narrate(fmt.Sprintf("📦 Auto-archived %d completed tasks older than 7 days", len(swept)))
	}
	return len(swept), nil
}

// indexOf must be called with the mutex held.
func (r *Tasks) indexOf(id string) int {
	for i, t := range r.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// narrate appends an activity line; the task mutation is already durable,
// so a narration failure is logged rather than surfaced.
func (r *Tasks) narrate(message string) {
	if _, err := r.activity.Append(message); err != nil {
		r.logger.Warn().Err(err).Msg("failed to append activity entry")
	}
}

func titleOrUntitled(title string) string {
	if title == "" {
		return "Untitled"
	}
	return title
}
