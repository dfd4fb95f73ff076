package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/scheduler/internal/model"
	"github.com/slotwise/scheduler/internal/store"
)

// --- Fakes ---

type timeUpdate struct {
	eventID    string
	start, end time.Time
}

type fakeEvents struct {
	created      []*model.Event
	updates      []timeUpdate
	failUpdateID string
	failCreate   bool
}

func (f *fakeEvents) Create(ctx context.Context, ev *model.Event) (*model.Event, error) {
	if f.failCreate {
		return nil, errors.New("storage write failed")
	}
	out := *ev
	out.CreationTime = time.Now().UTC()
	f.created = append(f.created, &out)
	return &out, nil
}

func (f *fakeEvents) Get(ctx context.Context, ownerID, eventID string) (*model.Event, error) {
	return nil, model.ErrNotFound
}

func (f *fakeEvents) ListWindow(ctx context.Context, req model.ListEventsRequest) ([]model.Event, error) {
	return nil, nil
}

func (f *fakeEvents) UpdateTimes(ctx context.Context, ownerID, eventID string, start, end time.Time) error {
	if eventID == f.failUpdateID {
		return errors.New("storage write failed")
	}
	f.updates = append(f.updates, timeUpdate{eventID: eventID, start: start, end: end})
	return nil
}

func (f *fakeEvents) Delete(ctx context.Context, ownerID, eventID string) error { return nil }

type fakeStore struct{ evs *fakeEvents }

func (f *fakeStore) Events() store.Events { return f.evs }

func newTestOrchestrator(evs *fakeEvents) *Orchestrator {
	return NewOrchestrator(&fakeStore{evs: evs}, NewScorer(0), zerolog.Nop())
}

// --- Suggest ---

func TestSuggest_SortedAndBounded(t *testing.T) {
	orc := newTestOrchestrator(&fakeEvents{})
	sc := businessContext(event("busy", day.Add(10*time.Hour), day.Add(11*time.Hour), model.PriorityMedium, false, false))

	slots, err := orc.Suggest(context.Background(), sc)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.LessOrEqual(t, len(slots), MaxSuggestions)

	for i := 1; i < len(slots); i++ {
		if slots[i-1].Score == slots[i].Score {
			assert.True(t, slots[i-1].Start.Before(slots[i].Start), "ties break by earliest start")
		} else {
			assert.Greater(t, slots[i-1].Score, slots[i].Score)
		}
	}
	for _, s := range slots {
		assert.GreaterOrEqual(t, s.Score, MinViableScore)
	}
}

func TestSuggest_TiesBreakByStartAcrossOpenDay(t *testing.T) {
	orc := newTestOrchestrator(&fakeEvents{})
	sc := businessContext()

	slots, err := orc.Suggest(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, slots, MaxSuggestions)

	// A fully open day scores every slot identically, so ranking reduces to
	// chronological order starting at the working-hours opening.
	assert.Equal(t, day.Add(9*time.Hour), slots[0].Start)
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, slots[0].Score, slots[i].Score)
		assert.True(t, slots[i-1].Start.Before(slots[i].Start))
	}
}

func TestSuggest_UsesIntentDuration(t *testing.T) {
	orc := newTestOrchestrator(&fakeEvents{})
	sc := businessContext()
	duration := 30
	sc.Intent.DurationMinutes = &duration

	slots, err := orc.Suggest(context.Background(), sc)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.Equal(t, 30*time.Minute, s.End.Sub(s.Start))
	}
}

func TestSuggest_FiltersBelowThreshold(t *testing.T) {
	orc := newTestOrchestrator(&fakeEvents{})

	// Late-afternoon window: the 16:30 candidate spills past working hours
	// while three fixed meetings and a busy attendee drag scores down.
	sc := businessContext(
		event("a", day.Add(16*time.Hour), day.Add(17*time.Hour), model.PriorityHigh, false, true),
		event("b", day.Add(16*time.Hour), day.Add(17*time.Hour), model.PriorityHigh, false, true),
		event("c", day.Add(16*time.Hour), day.Add(17*time.Hour), model.PriorityHigh, false, true),
	)
	sc.WindowStart = day.Add(16 * time.Hour)
	sc.WindowEnd = day.Add(17*time.Hour + 30*time.Minute)
	sc.AttendeeEvents = map[string][]model.Event{
		"alice@example.com": {event("a1", day.Add(16*time.Hour), day.Add(18*time.Hour), model.PriorityMedium, false, false)},
	}

	slots, err := orc.Suggest(context.Background(), sc)
	require.NoError(t, err)
	for _, s := range slots {
		assert.GreaterOrEqual(t, s.Score, MinViableScore)
	}
}

func TestSuggest_EmptyWhenNothingViable(t *testing.T) {
	orc := newTestOrchestrator(&fakeEvents{})
	sc := businessContext(
		event("a", day.Add(9*time.Hour), day.Add(17*time.Hour), model.PriorityHigh, false, true),
		event("b", day.Add(9*time.Hour), day.Add(17*time.Hour), model.PriorityHigh, false, true),
		event("c", day.Add(9*time.Hour), day.Add(17*time.Hour), model.PriorityHigh, false, true),
	)
	sc.AttendeeEvents = map[string][]model.Event{
		"alice@example.com": {event("a1", day, day.AddDate(0, 0, 1), model.PriorityMedium, false, false)},
		"bob@example.com":   {event("b1", day, day.AddDate(0, 0, 1), model.PriorityMedium, false, false)},
	}

	slots, err := orc.Suggest(context.Background(), sc)
	require.NoError(t, err)
	assert.Empty(t, slots, "no viable slots is an empty list, not an error")
}

func TestSuggest_Validation(t *testing.T) {
	orc := newTestOrchestrator(&fakeEvents{})

	_, err := orc.Suggest(context.Background(), model.SchedulingContext{
		WindowStart: day, WindowEnd: day.AddDate(0, 0, 1),
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = orc.Suggest(context.Background(), model.SchedulingContext{
		RequesterID: "user-1", WindowStart: day, WindowEnd: day,
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

// --- Commit ---

func commitContext() model.SchedulingContext {
	title := "Team sync"
	return model.SchedulingContext{
		RequesterID: "user-1",
		Intent:      model.ParsedIntent{Title: &title, Priority: model.PriorityMedium},
	}
}

func slotWithMoves(moves ...model.EventMove) model.SuggestedSlot {
	return model.SuggestedSlot{
		ID:            "slot-1",
		Start:         day.Add(10 * time.Hour),
		End:           day.Add(11 * time.Hour),
		Score:         90,
		RequiredMoves: moves,
	}
}

func sampleMove(id string) model.EventMove {
	return model.EventMove{
		EventID:       id,
		Title:         "event " + id,
		CurrentStart:  day.Add(10 * time.Hour),
		CurrentEnd:    day.Add(11 * time.Hour),
		ProposedStart: day.Add(11*time.Hour + 15*time.Minute),
		ProposedEnd:   day.Add(12*time.Hour + 15*time.Minute),
	}
}

func TestCommit_CreatesEvent(t *testing.T) {
	evs := &fakeEvents{}
	orc := newTestOrchestrator(evs)

	res, err := orc.Commit(context.Background(), commitContext(), slotWithMoves(), false)
	require.NoError(t, err)
	assert.NotEmpty(t, res.EventID)
	assert.Empty(t, res.MovedEvents)

	require.Len(t, evs.created, 1)
	created := evs.created[0]
	assert.Equal(t, "Team sync", created.Title)
	assert.Equal(t, "user-1", created.OwnerID)
	assert.Equal(t, day.Add(10*time.Hour), created.Start)
	assert.Equal(t, day.Add(11*time.Hour), created.End)
}

func TestCommit_DefaultTitle(t *testing.T) {
	evs := &fakeEvents{}
	orc := newTestOrchestrator(evs)

	sc := commitContext()
	sc.Intent.Title = nil
	_, err := orc.Commit(context.Background(), sc, slotWithMoves(), false)
	require.NoError(t, err)
	require.Len(t, evs.created, 1)
	assert.Equal(t, "New Event", evs.created[0].Title)
}

func TestCommit_AutoResolveAppliesMoves(t *testing.T) {
	evs := &fakeEvents{}
	orc := newTestOrchestrator(evs)

	mv := sampleMove("e1")
	res, err := orc.Commit(context.Background(), commitContext(), slotWithMoves(mv), true)
	require.NoError(t, err)
	assert.Equal(t, []model.EventMove{mv}, res.MovedEvents)

	require.Len(t, evs.updates, 1)
	assert.Equal(t, timeUpdate{eventID: "e1", start: mv.ProposedStart, end: mv.ProposedEnd}, evs.updates[0])
	require.Len(t, evs.created, 1)
}

func TestCommit_WithoutAutoResolveSkipsMoves(t *testing.T) {
	evs := &fakeEvents{}
	orc := newTestOrchestrator(evs)

	_, err := orc.Commit(context.Background(), commitContext(), slotWithMoves(sampleMove("e1")), false)
	require.NoError(t, err)
	assert.Empty(t, evs.updates)
}

func TestCommit_MoveFailureRevertsAppliedPrefix(t *testing.T) {
	evs := &fakeEvents{failUpdateID: "e2"}
	orc := newTestOrchestrator(evs)

	first := sampleMove("e1")
	second := sampleMove("e2")
	res, err := orc.Commit(context.Background(), commitContext(), slotWithMoves(first, second), true)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.MovedEvents, "applied prefix reverted")
	assert.Empty(t, evs.created, "no event created after failed move")

	// First update applies e1, second reverts it.
	require.Len(t, evs.updates, 2)
	assert.Equal(t, timeUpdate{eventID: "e1", start: first.ProposedStart, end: first.ProposedEnd}, evs.updates[0])
	assert.Equal(t, timeUpdate{eventID: "e1", start: first.CurrentStart, end: first.CurrentEnd}, evs.updates[1])
}

func TestCommit_CreateFailureRevertsMoves(t *testing.T) {
	evs := &fakeEvents{failCreate: true}
	orc := newTestOrchestrator(evs)

	mv := sampleMove("e1")
	res, err := orc.Commit(context.Background(), commitContext(), slotWithMoves(mv), true)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.MovedEvents)

	require.Len(t, evs.updates, 2)
	assert.Equal(t, timeUpdate{eventID: "e1", start: mv.CurrentStart, end: mv.CurrentEnd}, evs.updates[1])
}

func TestCommit_Validation(t *testing.T) {
	orc := newTestOrchestrator(&fakeEvents{})

	_, err := orc.Commit(context.Background(), model.SchedulingContext{}, slotWithMoves(), false)
	assert.ErrorIs(t, err, model.ErrValidation)

	sc := commitContext()
	badSlot := slotWithMoves()
	badSlot.End = badSlot.Start
	_, err = orc.Commit(context.Background(), sc, badSlot, false)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCommit_RecurrencePersistsRule(t *testing.T) {
	evs := &fakeEvents{}
	orc := newTestOrchestrator(evs)

	sc := commitContext()
	sc.Intent.Recurrence = &model.Recurrence{Frequency: model.FreqWeekly, Interval: 1, DaysOfWeek: []time.Weekday{time.Tuesday}}
	_, err := orc.Commit(context.Background(), sc, slotWithMoves(), false)
	require.NoError(t, err)
	require.Len(t, evs.created, 1)
	require.NotNil(t, evs.created[0].RecurrenceRule)
	assert.Contains(t, *evs.created[0].RecurrenceRule, "FREQ=WEEKLY")
}
