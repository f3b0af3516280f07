// Package memory is the read-only proxy over the long-term memory store: a
// SQLite database owned by another process, holding facts, goals,
// conversations and preferences. This package never writes to it. Every
// query degrades to an error the gateway reports as a structured payload;
// an unreachable or malformed store must never crash the process.
package memory

import (
	"context"
	"database/sql"
	"os"

	"github.com/rs/zerolog"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/agentdeck/agentdeck/internal/clock"
	deckerrors "github.com/agentdeck/agentdeck/internal/errors"
)

// Facts pagination bounds.
const (
	DefaultFactsLimit = 20
	MaxFactsLimit     = 100
)

// Store reads the long-term memory database.
type Store struct {
	db     *sql.DB
	path   string
	clock  clock.Clock
	logger zerolog.Logger
}

// Open prepares a read-only handle on the memory database. The open is
// lazy: a missing or broken database surfaces on the first query, not
// here, so the dashboard starts fine without a memory store attached.
func Open(path string, c clock.Clock, logger zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, deckerrors.Wrap(deckerrors.ErrEmptyValue, "memory database path")
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, deckerrors.Wrap(err, "failed to open memory database")
	}
	return &Store{db: db, path: path, clock: c, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats is the aggregate view over the whole memory store.
type Stats struct {
	FactsCount         int            `json:"facts_count"`
	GoalsCount         int            `json:"goals_count"`
	ActiveGoals        int            `json:"active_goals"`
	CompletedGoals     int            `json:"completed_goals"`
	ConversationsCount int            `json:"conversations_count"`
	ConversationsToday int            `json:"conversations_today"`
	PreferencesCount   int            `json:"preferences_count"`
	DatabaseSizeBytes  int64          `json:"database_size_bytes"`
	FactsByCategory    map[string]int `json:"facts_by_category"`
	ConversationsByDay map[string]int `json:"conversations_by_day"`
	GoalsByStatus      map[string]int `json:"goals_by_status"`
}

// Fact is one remembered fact.
type Fact struct {
	ID        int64  `json:"id"`
	Fact      string `json:"fact"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at"`
}

// FactsPage is a paginated facts response.
type FactsPage struct {
	Facts []Fact `json:"facts"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// Goal is one tracked goal.
type Goal struct {
	ID          int64   `json:"id"`
	Text        string  `json:"text"`
	Deadline    *string `json:"deadline"`
	Status      string  `json:"status"`
	Priority    *string `json:"priority"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt *string `json:"completed_at"`
}

// Conversation is one remembered exchange.
type Conversation struct {
	ID        int64  `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Channel   string `json:"channel"`
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

// Preference is one stored key/value preference.
type Preference struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

// Stats aggregates counts, category/status breakdowns, and a 30-day
// conversation histogram.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		FactsByCategory:    map[string]int{},
		ConversationsByDay: map[string]int{},
		GoalsByStatus:      map[string]int{},
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM facts", &stats.FactsCount},
		{"SELECT COUNT(*) FROM goals", &stats.GoalsCount},
		{"SELECT COUNT(*) FROM goals WHERE status = 'active'", &stats.ActiveGoals},
		{"SELECT COUNT(*) FROM goals WHERE status = 'completed'", &stats.CompletedGoals},
		{"SELECT COUNT(*) FROM conversations", &stats.ConversationsCount},
		{"SELECT COUNT(*) FROM preferences", &stats.PreferencesCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Stats{}, s.unavailable(err)
		}
	}

	today := s.clock.Now().UTC().Format("2006-01-02")
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE DATE(created_at) = ?", today,
	).Scan(&stats.ConversationsToday); err != nil {
		return Stats{}, s.unavailable(err)
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.DatabaseSizeBytes = info.Size()
	}

	rows, err := s.db.QueryContext(ctx, "SELECT category, COUNT(*) FROM facts GROUP BY category")
	if err != nil {
		return Stats{}, s.unavailable(err)
	}
	defer rows.Close()
	for rows.Next() {
		var category sql.NullString
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return Stats{}, s.unavailable(err)
		}
		key := category.String
		if key == "" {
			key = "uncategorized"
		}
		stats.FactsByCategory[key] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, s.unavailable(err)
	}

	thirtyDaysAgo := s.clock.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")
	dayRows, err := s.db.QueryContext(ctx,
		"SELECT DATE(created_at) AS day, COUNT(*) FROM conversations WHERE DATE(created_at) >= ? GROUP BY DATE(created_at) ORDER BY day",
		thirtyDaysAgo)
	if err != nil {
		return Stats{}, s.unavailable(err)
	}
	defer dayRows.Close()
	for dayRows.Next() {
		var day string
		var count int
		if err := dayRows.Scan(&day, &count); err != nil {
			return Stats{}, s.unavailable(err)
		}
		stats.ConversationsByDay[day] = count
	}
	if err := dayRows.Err(); err != nil {
		return Stats{}, s.unavailable(err)
	}

	statusRows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM goals GROUP BY status")
	if err != nil {
		return Stats{}, s.unavailable(err)
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var status sql.NullString
		var count int
		if err := statusRows.Scan(&status, &count); err != nil {
			return Stats{}, s.unavailable(err)
		}
		key := status.String
		if key == "" {
			key = "unknown"
		}
		stats.GoalsByStatus[key] = count
	}
	if err := statusRows.Err(); err != nil {
		return Stats{}, s.unavailable(err)
	}

	return stats, nil
}

// Facts returns one page of facts, newest first. Page and limit clamp to
// their allowed ranges.
func (s *Store) Facts(ctx context.Context, page, limit int) (FactsPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultFactsLimit
	}
	if limit > MaxFactsLimit {
		limit = MaxFactsLimit
	}

	result := FactsPage{Facts: []Fact{}, Page: page, Limit: limit}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM facts").Scan(&result.Total); err != nil {
		return FactsPage{}, s.unavailable(err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, fact, category, created_at FROM facts ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, (page-1)*limit)
	if err != nil {
		return FactsPage{}, s.unavailable(err)
	}
	defer rows.Close()
	for rows.Next() {
		var f Fact
		var category sql.NullString
		if err := rows.Scan(&f.ID, &f.Fact, &category, &f.CreatedAt); err != nil {
			return FactsPage{}, s.unavailable(err)
		}
		f.Category = category.String
		result.Facts = append(result.Facts, f)
	}
	if err := rows.Err(); err != nil {
		return FactsPage{}, s.unavailable(err)
	}
	return result, nil
}

// Goals returns all goals, newest first.
func (s *Store) Goals(ctx context.Context) ([]Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, deadline, status, priority, created_at, completed_at FROM goals ORDER BY created_at DESC")
	if err != nil {
		return nil, s.unavailable(err)
	}
	defer rows.Close()

	goals := []Goal{}
	for rows.Next() {
		var g Goal
		var deadline, priority, completedAt sql.NullString
		if err := rows.Scan(&g.ID, &g.Text, &deadline, &g.Status, &priority, &g.CreatedAt, &completedAt); err != nil {
			return nil, s.unavailable(err)
		}
		g.Deadline = nullableStr(deadline)
		g.Priority = nullableStr(priority)
		g.CompletedAt = nullableStr(completedAt)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, s.unavailable(err)
	}
	return goals, nil
}

// Conversations returns exchanges from the last days days, newest first.
func (s *Store) Conversations(ctx context.Context, days int) ([]Conversation, error) {
	if days < 1 {
		days = 7
	}
	since := s.clock.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02 15:04:05")

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, role, content, channel, session_id, created_at FROM conversations WHERE created_at >= ? ORDER BY created_at DESC",
		since)
	if err != nil {
		return nil, s.unavailable(err)
	}
	defer rows.Close()

	convs := []Conversation{}
	for rows.Next() {
		var c Conversation
		var channel, sessionID sql.NullString
		if err := rows.Scan(&c.ID, &c.Role, &c.Content, &channel, &sessionID, &c.CreatedAt); err != nil {
			return nil, s.unavailable(err)
		}
		c.Channel = channel.String
		c.SessionID = sessionID.String
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.unavailable(err)
	}
	return convs, nil
}

// Preferences returns all preferences ordered by key.
func (s *Store) Preferences(ctx context.Context) ([]Preference, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value, updated_at FROM preferences ORDER BY key")
	if err != nil {
		return nil, s.unavailable(err)
	}
	defer rows.Close()

	prefs := []Preference{}
	for rows.Next() {
		var p Preference
		if err := rows.Scan(&p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, s.unavailable(err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.unavailable(err)
	}
	return prefs, nil
}

func (s *Store) unavailable(err error) error {
	s.logger.Warn().Err(err).Str("path", s.path).Msg("memory store query failed")
	return deckerrors.Wrap(deckerrors.ErrMemoryUnavailable, err.Error())
}

func nullableStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
