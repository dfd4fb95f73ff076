package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/scheduler/internal/model"
)

func event(id string, start, end time.Time, priority model.Priority, flexible, immutable bool) model.Event {
	return model.Event{
		ID:          id,
		OwnerID:     "user-1",
		Title:       "event " + id,
		Start:       start,
		End:         end,
		Priority:    priority,
		IsFlexible:  flexible,
		IsImmutable: immutable,
	}
}

func TestDetectConflicts_HalfOpenOverlap(t *testing.T) {
	ten := day.Add(10 * time.Hour)
	eleven := day.Add(11 * time.Hour)
	existing := []model.Event{event("e1", ten, eleven, model.PriorityMedium, false, false)}

	cases := []struct {
		name       string
		start, end time.Time
		conflicts  int
	}{
		{"identical", ten, eleven, 1},
		{"straddles start", ten.Add(-30 * time.Minute), ten.Add(30 * time.Minute), 1},
		{"straddles end", eleven.Add(-30 * time.Minute), eleven.Add(30 * time.Minute), 1},
		{"contained", ten.Add(15 * time.Minute), ten.Add(45 * time.Minute), 1},
		{"containing", ten.Add(-time.Hour), eleven.Add(time.Hour), 1},
		{"touches start", ten.Add(-time.Hour), ten, 0},
		{"touches end", eleven, eleven.Add(time.Hour), 0},
		{"disjoint before", day.Add(8 * time.Hour), day.Add(9 * time.Hour), 0},
		{"disjoint after", day.Add(12 * time.Hour), day.Add(13 * time.Hour), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, DetectConflicts(tc.start, tc.end, existing), tc.conflicts)
		})
	}
}

func TestDetectConflicts_Severity(t *testing.T) {
	ten := day.Add(10 * time.Hour)
	eleven := day.Add(11 * time.Hour)

	hard := DetectConflicts(ten, eleven, []model.Event{event("e1", ten, eleven, model.PriorityHigh, false, true)})
	require.Len(t, hard, 1)
	assert.Equal(t, model.SeverityHard, hard[0].Severity)
	assert.False(t, hard[0].CanMove)

	soft := DetectConflicts(ten, eleven, []model.Event{event("e2", ten, eleven, model.PriorityMedium, false, false)})
	require.Len(t, soft, 1)
	assert.Equal(t, model.SeveritySoft, soft[0].Severity)
	assert.False(t, soft[0].CanMove, "medium priority, not flexible")
}

func TestDetectConflicts_CanMove(t *testing.T) {
	ten := day.Add(10 * time.Hour)
	eleven := day.Add(11 * time.Hour)

	cases := []struct {
		name     string
		ev       model.Event
		canMove  bool
		severity model.ConflictSeverity
	}{
		{"low priority", event("a", ten, eleven, model.PriorityLow, false, false), true, model.SeveritySoft},
		{"flexible", event("b", ten, eleven, model.PriorityHigh, true, false), true, model.SeveritySoft},
		{"immutable low", event("c", ten, eleven, model.PriorityLow, false, true), false, model.SeverityHard},
		{"immutable flexible", event("d", ten, eleven, model.PriorityMedium, true, true), false, model.SeverityHard},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := DetectConflicts(ten, eleven, []model.Event{tc.ev})
			require.Len(t, out, 1)
			assert.Equal(t, tc.canMove, out[0].CanMove)
			assert.Equal(t, tc.severity, out[0].Severity)
		})
	}
}
