package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slotwise/scheduler/internal/intent"
	"github.com/slotwise/scheduler/internal/model"
)

// maxDeterministicSuggestions caps the simplified hourly-grid heuristic.
const maxDeterministicSuggestions = 5

// Deterministic is the always-available provider: rule-based intent
// extraction, a coarse hourly-grid slot heuristic, and templated
// clarification questions. It performs no network calls and never fails.
type Deterministic struct{}

func NewDeterministic() *Deterministic { return &Deterministic{} }

func (d *Deterministic) ParseIntent(ctx context.Context, text string, sc model.SchedulingContext) (model.ParsedIntent, error) {
	ref := sc.WindowStart
	if ref.IsZero() {
		ref = time.Now()
	}
	return intent.Extract(text, ref), nil
}

// SuggestSlots proposes up to five hourly slots starting at the next full
// hour inside the window. This heuristic is deliberately coarser than the
// engine's scored search and is independent of it.
func (d *Deterministic) SuggestSlots(ctx context.Context, sc model.SchedulingContext) ([]model.SuggestedSlot, error) {
	durationMin := 60
	if sc.Intent.DurationMinutes != nil && *sc.Intent.DurationMinutes > 0 {
		durationMin = *sc.Intent.DurationMinutes
	}
	duration := time.Duration(durationMin) * time.Minute

	cursor := sc.WindowStart.Truncate(time.Hour)
	if cursor.Before(sc.WindowStart) {
		cursor = cursor.Add(time.Hour)
	}

	var out []model.SuggestedSlot
	for len(out) < maxDeterministicSuggestions && cursor.Before(sc.WindowEnd) {
		if sc.WorkingHours != nil {
			tod := cursor.Hour()*60 + cursor.Minute()
			if tod < sc.WorkingHours.Start.Minutes() {
				cursor = sc.WorkingHours.Start.On(cursor)
				continue
			}
			if tod >= sc.WorkingHours.End.Minutes() {
				cursor = sc.WorkingHours.Start.On(cursor.AddDate(0, 0, 1))
				continue
			}
		}
		out = append(out, model.SuggestedSlot{
			ID:     uuid.NewString(),
			Start:  cursor,
			End:    cursor.Add(duration),
			Score:  80 - len(out)*5,
			Reason: "next available hour",
		})
		cursor = cursor.Add(time.Hour)
	}
	return out, nil
}

func (d *Deterministic) GenerateClarification(ctx context.Context, text string, ambiguities []string) (string, error) {
	if len(ambiguities) == 0 {
		return "Could you share more detail about what you would like to schedule?", nil
	}
	var questions []string
	for _, a := range ambiguities {
		switch a {
		case model.AmbiguityStartTime:
			questions = append(questions, "What date and time would work for you?")
		case model.AmbiguityTitle:
			questions = append(questions, "What should this event be called?")
		default:
			questions = append(questions, fmt.Sprintf("Could you clarify the %s?", strings.ReplaceAll(a, "_", " ")))
		}
	}
	return strings.Join(questions, " "), nil
}
