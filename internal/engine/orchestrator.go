package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/model"
	"github.com/slotwise/scheduler/internal/recurrence"
	"github.com/slotwise/scheduler/internal/store"
)

const (
	// MinViableScore is the composite threshold below which a candidate is
	// discarded from suggestions.
	MinViableScore = 40
	// MaxSuggestions caps how many ranked slots Suggest returns.
	MaxSuggestions = 10
)

// Orchestrator composes candidate generation, conflict detection, scoring and
// move proposals into the suggest and commit operations.
type Orchestrator struct {
	store  store.Store
	scorer *Scorer
	log    zerolog.Logger
}

func NewOrchestrator(s store.Store, scorer *Scorer, log zerolog.Logger) *Orchestrator {
	if scorer == nil {
		scorer = NewScorer(0)
	}
	return &Orchestrator{store: s, scorer: scorer, log: log}
}

// Scorer exposes the orchestrator's scorer for providers that delegate
// slot evaluation back to the engine.
func (o *Orchestrator) Scorer() *Scorer { return o.scorer }

// Suggest generates and scores candidate slots over the context window,
// discards composites below MinViableScore, and returns at most
// MaxSuggestions slots sorted by descending score, ties broken by earliest
// start.
func (o *Orchestrator) Suggest(ctx context.Context, sc model.SchedulingContext) ([]model.SuggestedSlot, error) {
	if sc.RequesterID == "" {
		return nil, fmt.Errorf("%w: requester id is required", model.ErrValidation)
	}
	if !sc.WindowEnd.After(sc.WindowStart) {
		return nil, fmt.Errorf("%w: window end must be after window start", model.ErrValidation)
	}

	duration := DefaultDurationMinutes
	if sc.Intent.DurationMinutes != nil && *sc.Intent.DurationMinutes > 0 {
		duration = *sc.Intent.DurationMinutes
	}

	candidates := GenerateCandidates(sc.WindowStart, sc.WindowEnd, duration, sc.WorkingHours, &sc.Intent.Constraints)

	slots := make([]model.SuggestedSlot, 0, len(candidates))
	for _, c := range candidates {
		slot := o.scorer.Score(c.Start, c.End, sc)
		if slot.Score < MinViableScore {
			continue
		}
		slots = append(slots, slot)
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Score != slots[j].Score {
			return slots[i].Score > slots[j].Score
		}
		return slots[i].Start.Before(slots[j].Start)
	})
	if len(slots) > MaxSuggestions {
		slots = slots[:MaxSuggestions]
	}

	o.log.Debug().
		Int("candidates", len(candidates)).
		Int("viable", len(slots)).
		Str("requester", sc.RequesterID).
		Msg("slot suggestion completed")

	return slots, nil
}

// Commit persists the selected slot as a new event. When autoResolve is set
// and the slot carries required moves, the moves are applied first.
//
// Moves and the final creation are separate storage writes. The commit runs
// as an explicit sequence that records each applied move; on failure it
// attempts a compensating revert of the applied prefix and reports the events
// still moved in the returned CommitResult so partial state is never silent.
func (o *Orchestrator) Commit(ctx context.Context, sc model.SchedulingContext, slot model.SuggestedSlot, autoResolve bool) (*model.CommitResult, error) {
	if sc.RequesterID == "" {
		return nil, fmt.Errorf("%w: requester id is required", model.ErrValidation)
	}
	if !slot.End.After(slot.Start) {
		return nil, fmt.Errorf("%w: slot end must be after slot start", model.ErrValidation)
	}

	var applied []model.EventMove
	if autoResolve && len(slot.RequiredMoves) > 0 {
		for _, mv := range slot.RequiredMoves {
			if err := o.store.Events().UpdateTimes(ctx, sc.RequesterID, mv.EventID, mv.ProposedStart, mv.ProposedEnd); err != nil {
				o.log.Error().Err(err).
					Str("event_id", mv.EventID).
					Int("applied_moves", len(applied)).
					Msg("event move failed, reverting applied moves")
				return &model.CommitResult{MovedEvents: o.revertMoves(ctx, sc.RequesterID, applied)},
					fmt.Errorf("move event %s: %w", mv.EventID, err)
			}
			applied = append(applied, mv)
		}
	}

	ev := eventFromIntent(sc, slot)
	created, err := o.store.Events().Create(ctx, ev)
	if err != nil {
		o.log.Error().Err(err).
			Int("applied_moves", len(applied)).
			Msg("event creation failed after moves, reverting applied moves")
		return &model.CommitResult{MovedEvents: o.revertMoves(ctx, sc.RequesterID, applied)},
			fmt.Errorf("create event: %w", err)
	}

	return &model.CommitResult{EventID: created.ID, MovedEvents: applied}, nil
}

// revertMoves restores applied moves to their original times, best effort.
// It returns the moves that remain applied after reversion.
func (o *Orchestrator) revertMoves(ctx context.Context, ownerID string, applied []model.EventMove) []model.EventMove {
	var stillMoved []model.EventMove
	for i := len(applied) - 1; i >= 0; i-- {
		mv := applied[i]
		if err := o.store.Events().UpdateTimes(ctx, ownerID, mv.EventID, mv.CurrentStart, mv.CurrentEnd); err != nil {
			o.log.Error().Err(err).Str("event_id", mv.EventID).Msg("compensating revert failed")
			stillMoved = append(stillMoved, mv)
		}
	}
	return stillMoved
}

func eventFromIntent(sc model.SchedulingContext, slot model.SuggestedSlot) *model.Event {
	intent := sc.Intent

	title := "New Event"
	if intent.Title != nil && *intent.Title != "" {
		title = *intent.Title
	}
	description := ""
	if intent.Description != nil {
		description = *intent.Description
	}

	ev := &model.Event{
		ID:          uuid.NewString(),
		OwnerID:     sc.RequesterID,
		WorkspaceID: sc.WorkspaceID,
		Title:       title,
		Description: description,
		Start:       slot.Start,
		End:         slot.End,
		Location:    intent.Location,
		Priority:    model.ParsePriority(string(intent.Priority)),
		IsFlexible:  intent.IsFlexible,
		IsImmutable: intent.IsImmutable,
	}
	if intent.Recurrence != nil {
		if rule, err := recurrence.RuleString(*intent.Recurrence, slot.Start); err == nil {
			ev.RecurrenceRule = &rule
		}
	}
	return ev
}

// ExpandRecurring lists the occurrence start times of a recurring event
// within [windowStart, windowEnd]. Non-recurring events expand to their own
// start when it falls inside the window.
func ExpandRecurring(ev model.Event, windowStart, windowEnd time.Time) ([]time.Time, error) {
	if ev.RecurrenceRule == nil || *ev.RecurrenceRule == "" {
		if !ev.Start.Before(windowStart) && !ev.Start.After(windowEnd) {
			return []time.Time{ev.Start}, nil
		}
		return nil, nil
	}
	return recurrence.Expand(*ev.RecurrenceRule, ev.Start, windowStart, windowEnd)
}
