package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/domain"
	deckerrors "github.com/agentdeck/agentdeck/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestNew_EmptyDir(t *testing.T) {
	_, err := New("", zerolog.Nop())
	assert.Error(t, err)
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := New(dir, zerolog.Nop())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	tasks := []domain.Task{
		{ID: "a1b2c3d4", Title: "Write report", Status: domain.TaskStatusTodo, CreatedAt: "2026-02-03T10:00:00.000000Z"},
		{ID: "e5f6a7b8", Title: "Review PR", Status: domain.TaskStatusDone, Extra: map[string]any{"points": float64(3)}},
	}
	require.NoError(t, s.Save("tasks", tasks))

	var got []domain.Task
	require.True(t, s.Load("tasks", &got))
	assert.Equal(t, tasks, got)
}

func TestStore_LoadMissingReturnsFalse(t *testing.T) {
	s := newTestStore(t)

	got := []domain.Task{{ID: "sentinel"}}
	assert.False(t, s.Load("tasks", &got))
	assert.Equal(t, "sentinel", got[0].ID, "Load must not touch the value on miss")
}

func TestStore_LoadCorruptReturnsFalse(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path("tasks"), []byte("{not json"), 0o600))

	var got []domain.Task
	assert.False(t, s.Load("tasks", &got), "corruption degrades to defaults, never errors")
	assert.Empty(t, got)
}

func TestStore_LockIsExclusive(t *testing.T) {
	dir := t.TempDir()

	first, err := New(dir, zerolog.Nop())
	require.NoError(t, err)

	_, err = New(dir, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, deckerrors.ErrDataDirLocked)

	// Closing releases the directory for a successor.
	require.NoError(t, first.Close())
	second, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("mood", domain.Mood{}))
	happy := "happy"
	now := "2026-02-03T10:00:00.000000Z"
	require.NoError(t, s.Save("mood", domain.Mood{Mood: &happy, LastUpdated: &now}))

	var got domain.Mood
	require.True(t, s.Load("mood", &got))
	require.NotNil(t, got.Mood)
	assert.Equal(t, "happy", *got.Mood)
}
