package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/scheduler/internal/model"
)

var ref = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) // a Monday

func TestExtract_TeamSyncTomorrow(t *testing.T) {
	out := Extract("Team sync tomorrow at 2pm for 30 minutes with alice@example.com", ref)

	require.NotNil(t, out.Title)
	assert.Equal(t, "Team sync", *out.Title)

	require.NotNil(t, out.Start)
	assert.Equal(t, time.Date(2025, 3, 11, 14, 0, 0, 0, time.UTC), *out.Start)

	require.NotNil(t, out.DurationMinutes)
	assert.Equal(t, 30, *out.DurationMinutes)

	require.NotNil(t, out.End)
	assert.Equal(t, out.Start.Add(30*time.Minute), *out.End)

	assert.Equal(t, []string{"alice@example.com"}, out.Attendees)
	assert.False(t, out.HasAmbiguity(model.AmbiguityStartTime))
	assert.False(t, out.HasAmbiguity(model.AmbiguityTitle))
}

func TestExtract_AmbiguitiesWhenNothingParses(t *testing.T) {
	out := Extract("", ref)
	assert.True(t, out.HasAmbiguity(model.AmbiguityStartTime))
	assert.True(t, out.HasAmbiguity(model.AmbiguityTitle))
	assert.Equal(t, defaultConfidence, out.Confidence)
}

func TestExtract_DurationPhrases(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"standup for 15 minutes", 15},
		{"review for 1 hour", 60},
		{"workshop for 2 hours 30 minutes", 150},
		{"quick chat for 45 min", 45},
		{"deep work for 2h", 120},
	}
	for _, tc := range cases {
		out := Extract(tc.text, ref)
		require.NotNil(t, out.DurationMinutes, tc.text)
		assert.Equal(t, tc.want, *out.DurationMinutes, tc.text)
	}
}

func TestExtract_Recurrence(t *testing.T) {
	daily := Extract("standup every day at 9am", ref)
	require.NotNil(t, daily.Recurrence)
	assert.Equal(t, model.FreqDaily, daily.Recurrence.Frequency)
	assert.Equal(t, 1, daily.Recurrence.Interval)

	weekly := Extract("review weekly on friday", ref)
	require.NotNil(t, weekly.Recurrence)
	assert.Equal(t, model.FreqWeekly, weekly.Recurrence.Frequency)
	assert.Equal(t, []time.Weekday{time.Friday}, weekly.Recurrence.DaysOfWeek)

	monthly := Extract("retro every month", ref)
	require.NotNil(t, monthly.Recurrence)
	assert.Equal(t, model.FreqMonthly, monthly.Recurrence.Frequency)

	bare := Extract("gym every monday and wednesday", ref)
	require.NotNil(t, bare.Recurrence)
	assert.Equal(t, model.FreqWeekly, bare.Recurrence.Frequency)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, bare.Recurrence.DaysOfWeek)

	weekend := Extract("hike every weekend", ref)
	require.NotNil(t, weekend.Recurrence)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, weekend.Recurrence.DaysOfWeek)
}

func TestExtract_Constraints(t *testing.T) {
	out := Extract("planning session tomorrow not before 10am not after 4pm", ref)
	require.NotNil(t, out.Constraints.NotBefore)
	assert.Equal(t, model.TimeOfDay{Hour: 10}, *out.Constraints.NotBefore)
	require.NotNil(t, out.Constraints.NotAfter)
	assert.Equal(t, model.TimeOfDay{Hour: 16}, *out.Constraints.NotAfter)

	bare := Extract("sync tomorrow before 3pm", ref)
	require.NotNil(t, bare.Constraints.NotAfter)
	assert.Equal(t, model.TimeOfDay{Hour: 15}, *bare.Constraints.NotAfter)
	assert.Nil(t, bare.Constraints.NotBefore)

	after := Extract("sync tomorrow after 1pm", ref)
	require.NotNil(t, after.Constraints.NotBefore)
	assert.Equal(t, model.TimeOfDay{Hour: 13}, *after.Constraints.NotBefore)
}

func TestExtract_PriorityAndFlexibility(t *testing.T) {
	assert.Equal(t, model.PriorityHigh, Extract("urgent call tomorrow", ref).Priority)
	assert.Equal(t, model.PriorityLow, Extract("optional coffee chat", ref).Priority)
	assert.Equal(t, model.PriorityMedium, Extract("team lunch tomorrow", ref).Priority)

	flex := Extract("catch up whenever works", ref)
	assert.True(t, flex.IsFlexible)

	fixed := Extract("board meeting must be at 9am tomorrow", ref)
	assert.True(t, fixed.IsImmutable)
}

func TestExtract_AttendeeNames(t *testing.T) {
	out := Extract("Design review tomorrow at 3pm with Alice and Bob", ref)
	assert.Equal(t, []string{"Alice", "Bob"}, out.Attendees)
}

func TestExtract_StartEndRange(t *testing.T) {
	out := Extract("Planning tomorrow at 2pm until 4pm", ref)
	require.NotNil(t, out.Start)
	require.NotNil(t, out.End)
	require.NotNil(t, out.DurationMinutes)
	assert.Equal(t, 120, *out.DurationMinutes)
	assert.True(t, out.End.After(*out.Start))
}

func TestExtract_TitleFallbackFirstTokens(t *testing.T) {
	out := Extract("quarterly budget review with finance team leads extra words", ref)
	require.NotNil(t, out.Title)
	assert.Equal(t, "quarterly budget review with finance", *out.Title)
}

func TestParseClock(t *testing.T) {
	cases := map[string]model.TimeOfDay{
		"10":      {Hour: 10},
		"10am":    {Hour: 10},
		"10:30pm": {Hour: 22, Minute: 30},
		"12am":    {Hour: 0},
		"12pm":    {Hour: 12},
		"14:00":   {Hour: 14},
	}
	for in, want := range cases {
		got, ok := parseClock(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	if _, ok := parseClock("25:00"); ok {
		t.Fatal("expected 25:00 to be rejected")
	}
}
