package repo

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }

func TestNotes_AddAndMarkRead(t *testing.T) {
	d := newTestDeps(t)
	r := NewNotes(d.store, d.clock, d.activity, zerolog.Nop())

	note, err := r.Add("remember the weekly digest")
	require.NoError(t, err)
	assert.Len(t, note.ID, 8)
	assert.False(t, note.Read)
	assert.Empty(t, note.ReadAt)

	marked, found, err := r.MarkRead(note.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, marked.Read)
	firstReadAt := marked.ReadAt
	require.NotEmpty(t, firstReadAt)

	// readAt is stamped once: a second mark keeps the original stamp.
	d.clock.Set(d.clock.Now().Add(1000000000))
	marked, found, err = r.MarkRead(note.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, firstReadAt, marked.ReadAt)
}

func TestNotes_MarkReadAbsentIDIsNoOp(t *testing.T) {
	d := newTestDeps(t)
	r := NewNotes(d.store, d.clock, d.activity, zerolog.Nop())

	_, found, err := r.MarkRead("missing1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNotes_DeleteAndNarration(t *testing.T) {
	d := newTestDeps(t)
	r := NewNotes(d.store, d.clock, d.activity, zerolog.Nop())

	long := strings.Repeat("x", 80)
	_, err := r.Add(long)
	require.NoError(t, err)

	entries := d.activity.Since(0)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "📝 Note added: "+strings.Repeat("x", 50))

	notes := r.List()
	require.Len(t, notes, 1)
	require.NoError(t, r.Delete(notes[0].ID))
	assert.Empty(t, r.List())

	// Deleting an absent id is a silent no-op.
	require.NoError(t, r.Delete("missing1"))
}

func TestScheduled_AddDefaults(t *testing.T) {
	d := newTestDeps(t)
	r := NewScheduled(d.store, d.clock, zerolog.Nop())

	item, err := r.Add(AddParams{Name: "Morning digest"})
	require.NoError(t, err)
	assert.Equal(t, "daily", item.Schedule)
	assert.Equal(t, "📋", item.Icon)
	assert.True(t, item.Enabled)
	assert.Nil(t, item.LastRun)

	disabled := false
	item, err = r.Add(AddParams{Name: "Weekly report", Schedule: "weekly", Icon: "📊", Enabled: &disabled})
	require.NoError(t, err)
	assert.Equal(t, "weekly", item.Schedule)
	assert.False(t, item.Enabled)

	require.Len(t, r.List(), 2)
	require.NoError(t, r.Delete(item.ID))
	assert.Len(t, r.List(), 1)
}

func TestMetrics_FieldMerge(t *testing.T) {
	d := newTestDeps(t)
	r := NewMetrics(d.store, d.clock, zerolog.Nop())

	m, err := r.Patch(domain.MetricsPatch{Provider: strPtr("copilot"), PremiumRemaining: floatPtr(120)})
	require.NoError(t, err)
	assert.Equal(t, "copilot", m.Provider)
	require.NotNil(t, m.TokenUsage.PremiumRemaining)
	assert.Equal(t, float64(120), *m.TokenUsage.PremiumRemaining)
	require.NotNil(t, m.TokenUsage.LastUpdated)

	// A later patch merges without clobbering earlier fields.
	m, err = r.Patch(domain.MetricsPatch{TokenUsage: &domain.TokenUsagePatch{ChatRemaining: floatPtr(44)}})
	require.NoError(t, err)
	assert.Equal(t, "copilot", m.Provider)
	require.NotNil(t, m.TokenUsage.PremiumRemaining)
	assert.Equal(t, float64(120), *m.TokenUsage.PremiumRemaining)
	require.NotNil(t, m.TokenUsage.ChatRemaining)
	assert.Equal(t, float64(44), *m.TokenUsage.ChatRemaining)
}

func TestMetrics_DefaultIsEmptyUsage(t *testing.T) {
	d := newTestDeps(t)
	r := NewMetrics(d.store, d.clock, zerolog.Nop())

	m := r.Get()
	assert.Nil(t, m.TokenUsage.PremiumRemaining)
	assert.Nil(t, m.TokenUsage.ChatRemaining)
	assert.Nil(t, m.TokenUsage.LastUpdated)
}

func TestMood_FullReplace(t *testing.T) {
	d := newTestDeps(t)
	r := NewMood(d.store, d.clock, d.activity, zerolog.Nop())

	def := r.Get()
	assert.Nil(t, def.Mood)

	m, err := r.Set("focused")
	require.NoError(t, err)
	require.NotNil(t, m.Mood)
	assert.Equal(t, "focused", *m.Mood)
	require.NotNil(t, m.LastUpdated)

	entries := d.activity.Since(0)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "🧠 Mood updated to: focused")

	m, err = r.Set("tired")
	require.NoError(t, err)
	assert.Equal(t, "tired", *m.Mood)
}
