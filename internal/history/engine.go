// Package history implements the archival/aggregation engine: weekly
// grouped history views and summary statistics derived from the task
// repository on demand. The engine is stateless across calls; every query
// recomputes from the repository's current contents.
package history

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/agentdeck/agentdeck/internal/clock"
	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/repo"
)

// archiveAge is how long a done task rests before the sweep archives it.
const archiveAge = 7 * 24 * time.Hour

// Pagination bounds for history queries.
const (
	defaultPageLimit = 100
	maxPageLimit     = 200
)

// unassignedOwner is the attribution bucket for completed tasks that carry
// neither an assignee nor a completer.
const unassignedOwner = "Manager"

// Engine computes history views over the task repository.
type Engine struct {
	tasks *repo.Tasks
	clock clock.Clock
}

// NewEngine creates an engine over the given task repository.
func NewEngine(tasks *repo.Tasks, c clock.Clock) *Engine {
	return &Engine{tasks: tasks, clock: c}
}

// ArchiveOld transitions done tasks completed more than seven days ago to
// archive and reports how many changed. Idempotent: a sweep with nothing
// eligible archives zero and has no side effects.
func (e *Engine) ArchiveOld() (int, error) {
	return e.tasks.ArchiveOlderThan(archiveAge)
}

// Query filters a history view. Zero values mean "no filter"; Status
// defaults to {done, archive}.
type Query struct {
	// Text is matched case-insensitively against title, description and
	// assignee.
	Text string

	// Agent is a case-insensitive substring filter on the assignee.
	Agent string

	// From and To bound (completedAt, falling back to createdAt)
	// inclusively. From is a date or timestamp prefix; To is a date whose
	// whole day is included.
	From string
	To   string

	// Status is the allow-set of statuses.
	Status []string

	Page  int
	Limit int
}

// WeekGroup is one ISO week's worth of matching tasks.
type WeekGroup struct {
	WeekKey   string        `json:"weekKey"`
	WeekLabel string        `json:"weekLabel"`
	Tasks     []domain.Task `json:"tasks"`
}

// Stats aggregates the UNFILTERED set of all done/archive tasks, so a
// narrow history filter still reports global completion statistics.
type Stats struct {
	TotalCompleted         int            `json:"totalCompleted"`
	ThisWeek               int            `json:"thisWeek"`
	LastWeek               int            `json:"lastWeek"`
	ByAgent                map[string]int `json:"byAgent"`
	ByPriority             map[string]int `json:"byPriority"`
	AvgCompletionTimeHours float64        `json:"avgCompletionTimeHours"`
}

// Pagination describes the filtered result window.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// Result is a full history response.
type Result struct {
	Weeks      []WeekGroup `json:"weeks"`
	Stats      Stats       `json:"stats"`
	Pagination Pagination  `json:"pagination"`
}

// History returns matching tasks grouped by ISO week, newest week first,
// plus global completion statistics and pagination metadata. Filtering and
// sorting happen before pagination; grouping applies to the returned page.
func (e *Engine) History(q Query) Result {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	allowed := map[string]bool{}
	if len(q.Status) == 0 {
		allowed[domain.TaskStatusDone] = true
		allowed[domain.TaskStatusArchive] = true
	}
	for _, s := range q.Status {
		if s = strings.TrimSpace(s); s != "" {
			allowed[s] = true
		}
	}

	all := e.tasks.All()

	filtered := make([]domain.Task, 0, len(all))
	text := strings.ToLower(q.Text)
	agent := strings.ToLower(q.Agent)
	for _, t := range all {
		if !allowed[t.Status] {
			continue
		}
		if text != "" {
			haystack := strings.ToLower(t.Title + " " + t.Description + " " + t.AssignedTo)
			if !strings.Contains(haystack, text) {
				continue
			}
		}
		if agent != "" && !strings.Contains(strings.ToLower(t.AssignedTo), agent) {
			continue
		}
		when := effectiveDate(t)
		if q.From != "" && when < q.From {
			continue
		}
		if q.To != "" && when > q.To+"T23:59:59Z" {
			continue
		}
		filtered = append(filtered, t)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return effectiveDate(filtered[i]) > effectiveDate(filtered[j])
	})

	total := len(filtered)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	page := filtered[start:end]

	groups := map[string][]domain.Task{}
	for _, t := range page {
		key := WeekKey(effectiveDate(t))
		groups[key] = append(groups[key], t)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	weeks := make([]WeekGroup, 0, len(keys))
	for _, k := range keys {
		weeks = append(weeks, WeekGroup{WeekKey: k, WeekLabel: WeekLabel(k), Tasks: groups[k]})
	}

	return Result{
		Weeks: weeks,
		Stats: e.completionStats(all),
		Pagination: Pagination{
			Page:    q.Page,
			Limit:   q.Limit,
			Total:   total,
			HasMore: end < total,
		},
	}
}

// completionStats aggregates over all done/archive tasks regardless of the
// query's filters.
func (e *Engine) completionStats(all []domain.Task) Stats {
	now := e.clock.Now()
	thisWeek := weekKeyOf(now)
	lastWeek := weekKeyOf(now.AddDate(0, 0, -7))

	stats := Stats{
		ByAgent:    map[string]int{},
		ByPriority: map[string]int{},
	}
	var hours []float64
	for _, t := range all {
		if !t.IsCompleted() {
			continue
		}
		stats.TotalCompleted++
		stats.ByAgent[owner(t)]++
		stats.ByPriority[priorityOrMedium(t)]++

		switch WeekKey(effectiveDate(t)) {
		case thisWeek:
			stats.ThisWeek++
		case lastWeek:
			stats.LastWeek++
		}

		if t.StartedAt != "" && t.CompletedAt != "" {
			s, errS := domain.ParseTime(t.StartedAt)
			c, errC := domain.ParseTime(t.CompletedAt)
			if errS == nil && errC == nil {
				hours = append(hours, c.Sub(s).Hours())
			}
		}
	}
	if len(hours) > 0 {
		sum := 0.0
		for _, h := range hours {
			sum += h
		}
		stats.AvgCompletionTimeHours = math.Round(sum/float64(len(hours))*10) / 10
	}
	return stats
}

// TimelinePoint is one week's completion count in the summary timeline.
type TimelinePoint struct {
	Week  string `json:"week"`
	Count int    `json:"count"`
}

// Summary is the all-task statistics response.
type Summary struct {
	TotalTasks        int             `json:"totalTasks"`
	TotalCompleted    int             `json:"totalCompleted"`
	TotalArchived     int             `json:"totalArchived"`
	CompletedThisWeek int             `json:"completedThisWeek"`
	CompletedLastWeek int             `json:"completedLastWeek"`
	ByAgent           map[string]int  `json:"byAgent"`
	ByPriority        map[string]int  `json:"byPriority"`
	ByStatus          map[string]int  `json:"byStatus"`
	Timeline          []TimelinePoint `json:"timeline"`
}

// Summarize computes counts by status over all tasks and, restricted to
// done/archive tasks, per-assignee and per-priority breakdowns plus a
// week-keyed completion timeline sorted ascending.
func (e *Engine) Summarize() Summary {
	now := e.clock.Now()
	thisWeek := weekKeyOf(now)
	lastWeek := weekKeyOf(now.AddDate(0, 0, -7))

	s := Summary{
		ByAgent:    map[string]int{},
		ByPriority: map[string]int{},
		ByStatus:   map[string]int{},
	}
	timeline := map[string]int{}

	for _, t := range e.tasks.All() {
		s.TotalTasks++
		status := t.Status
		if status == "" {
			status = "unknown"
		}
		s.ByStatus[status]++
		if !t.IsCompleted() {
			continue
		}
		s.ByAgent[owner(t)]++
		s.ByPriority[priorityOrMedium(t)]++
		key := WeekKey(effectiveDate(t))
		if key == UnknownWeek {
			continue
		}
		timeline[key]++
		switch key {
		case thisWeek:
			s.CompletedThisWeek++
		case lastWeek:
			s.CompletedLastWeek++
		}
	}
	s.TotalCompleted = s.ByStatus[domain.TaskStatusDone] + s.ByStatus[domain.TaskStatusArchive]
	s.TotalArchived = s.ByStatus[domain.TaskStatusArchive]

	keys := make([]string, 0, len(timeline))
	for k := range timeline {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s.Timeline = make([]TimelinePoint, 0, len(keys))
	for _, k := range keys {
		s.Timeline = append(s.Timeline, TimelinePoint{Week: k, Count: timeline[k]})
	}
	return s
}

// effectiveDate is completedAt with createdAt as fallback.
func effectiveDate(t domain.Task) string {
	if t.CompletedAt != "" {
		return t.CompletedAt
	}
	return t.CreatedAt
}

func owner(t domain.Task) string {
	if t.AssignedTo != "" {
		return t.AssignedTo
	}
	if t.CompletedBy != "" {
		return t.CompletedBy
	}
	return unassignedOwner
}

func priorityOrMedium(t domain.Task) string {
	if t.Priority == "" {
		return "medium"
	}
	return t.Priority
}
