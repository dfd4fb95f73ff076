package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/slotwise/scheduler/internal/model"
)

// Composite weights. Availability dominates, buffer is a minor tiebreaker;
// the buffer factor feeds the composite but is not reported in the breakdown.
const (
	weightAvailability = 0.30
	weightPreference   = 0.25
	weightAttendees    = 0.20
	weightDisruption   = 0.15
	weightBuffer       = 0.10
)

// DefaultBufferMinutes is the minimum desired gap between a candidate and its
// neighboring events.
const DefaultBufferMinutes = 15

// Scorer evaluates candidate slots against a scheduling context. It is
// stateless apart from its buffer policy and safe for concurrent use.
type Scorer struct {
	BufferMinutes int
}

// NewScorer returns a Scorer with the given buffer policy, defaulting to
// DefaultBufferMinutes when bufferMinutes is not positive.
func NewScorer(bufferMinutes int) *Scorer {
	if bufferMinutes <= 0 {
		bufferMinutes = DefaultBufferMinutes
	}
	return &Scorer{BufferMinutes: bufferMinutes}
}

// Score evaluates one candidate slot. The composite is a fixed weighted
// combination of availability, preference, attendee, disruption and buffer
// factors, rounded and clamped to [0,100]. Identical inputs always produce an
// identical score and reason.
func (s *Scorer) Score(slotStart, slotEnd time.Time, sc model.SchedulingContext) model.SuggestedSlot {
	conflicts := DetectConflicts(slotStart, slotEnd, sc.ExistingEvents)
	moves := ProposeMoves(conflicts, slotStart, slotEnd, sc.ExistingEvents)

	availability := scoreAvailability(conflicts)
	preference := scorePreference(slotStart, slotEnd, sc)
	attendees := scoreAttendees(slotStart, slotEnd, sc.AttendeeEvents)
	disruption := scoreDisruption(len(moves), len(sc.ExistingEvents))
	buffer := s.scoreBuffer(slotStart, slotEnd, sc.ExistingEvents)

	composite := clampScore(int(math.Round(
		weightAvailability*float64(availability) +
			weightPreference*float64(preference) +
			weightAttendees*float64(attendees) +
			weightDisruption*float64(disruption) +
			weightBuffer*float64(buffer))))

	breakdown := model.ScoreBreakdown{
		Availability: availability,
		Preference:   preference,
		Attendees:    attendees,
		Disruption:   disruption,
	}

	return model.SuggestedSlot{
		ID:            uuid.NewString(),
		Start:         slotStart,
		End:           slotEnd,
		Score:         composite,
		Breakdown:     breakdown,
		Conflicts:     conflicts,
		Warnings:      buildWarnings(conflicts, breakdown, sc),
		Reason:        buildReason(composite, conflicts, breakdown, slotStart, slotEnd, sc),
		RequiredMoves: moves,
	}
}

// scoreAvailability penalizes each directly overlapping event by its weight.
func scoreAvailability(conflicts []model.ConflictInfo) int {
	score := 100
	for _, c := range conflicts {
		switch c.Priority {
		case model.PriorityHigh:
			score -= 45
		case model.PriorityLow:
			score -= 15
		default:
			score -= 30
		}
	}
	return clampScore(score)
}

func scorePreference(slotStart, slotEnd time.Time, sc model.SchedulingContext) int {
	score := 70
	if sc.WorkingHours != nil {
		if withinWorkingHours(slotStart, slotEnd, *sc.WorkingHours) {
			score += 20
		} else {
			score -= 30
		}
	}
	cons := sc.Intent.Constraints
	if containsWeekday(cons.PreferredDays, slotStart.Weekday()) {
		score += 10
	}
	if containsWeekday(cons.AvoidDays, slotStart.Weekday()) {
		score -= 20
	}
	return clampScore(score)
}

// scoreAttendees degrades per attendee with a conflicting event. No attendee
// data at all scores a neutral 100.
func scoreAttendees(slotStart, slotEnd time.Time, attendeeEvents map[string][]model.Event) int {
	if len(attendeeEvents) == 0 {
		return 100
	}
	conflicting := 0
	for _, events := range attendeeEvents {
		for _, ev := range events {
			if overlaps(slotStart, slotEnd, ev.Start, ev.End) {
				conflicting++
				break
			}
		}
	}
	return clampScore(100 - conflicting*100/len(attendeeEvents))
}

// scoreDisruption relates required moves to the total event count; zero moves
// scores highest.
func scoreDisruption(moveCount, eventCount int) int {
	if eventCount == 0 || moveCount == 0 {
		return 100
	}
	return clampScore(100 - moveCount*100/eventCount)
}

// scoreBuffer checks the gap between the slot and its nearest neighbors on
// each side. An overlapping neighbor is a negative gap and zeroes the factor.
func (s *Scorer) scoreBuffer(slotStart, slotEnd time.Time, events []model.Event) int {
	buffer := time.Duration(s.BufferMinutes) * time.Minute
	score := 100
	var prevEnd, nextStart *time.Time
	for _, ev := range events {
		if overlaps(slotStart, slotEnd, ev.Start, ev.End) {
			return 0
		}
		if !ev.End.After(slotStart) {
			if prevEnd == nil || ev.End.After(*prevEnd) {
				e := ev.End
				prevEnd = &e
			}
		}
		if !ev.Start.Before(slotEnd) {
			if nextStart == nil || ev.Start.Before(*nextStart) {
				st := ev.Start
				nextStart = &st
			}
		}
	}
	if prevEnd != nil && slotStart.Sub(*prevEnd) < buffer {
		score -= 50
	}
	if nextStart != nil && nextStart.Sub(slotEnd) < buffer {
		score -= 50
	}
	return clampScore(score)
}

func withinWorkingHours(slotStart, slotEnd time.Time, wh model.WorkingHours) bool {
	startMin := minutesOfDay(slotStart)
	endMin := startMin + int(slotEnd.Sub(slotStart).Minutes())
	return startMin >= wh.Start.Minutes() && endMin <= wh.End.Minutes()
}

func buildReason(score int, conflicts []model.ConflictInfo, b model.ScoreBreakdown, slotStart, slotEnd time.Time, sc model.SchedulingContext) string {
	var quality string
	switch {
	case score >= 85:
		quality = "excellent"
	case score >= 70:
		quality = "good"
	case score >= 55:
		quality = "acceptable"
	default:
		quality = "suboptimal"
	}
	reason := fmt.Sprintf("%s fit (score %d)", quality, score)
	if n := len(conflicts); n > 0 {
		reason += fmt.Sprintf(", overlaps %d existing event(s)", n)
	}
	if sc.WorkingHours != nil {
		if withinWorkingHours(slotStart, slotEnd, *sc.WorkingHours) {
			reason += ", within working hours"
		} else {
			reason += ", outside working hours"
		}
	}
	if len(sc.AttendeeEvents) > 0 && b.Attendees == 100 {
		reason += ", all attendees appear free"
	}
	return reason
}

func buildWarnings(conflicts []model.ConflictInfo, b model.ScoreBreakdown, sc model.SchedulingContext) []string {
	var warnings []string
	if n := len(conflicts); n > 0 {
		warnings = append(warnings, fmt.Sprintf("conflicts with %d existing event(s)", n))
	}
	if b.Preference < 50 {
		warnings = append(warnings, "slot falls outside preferred times")
	}
	if b.Attendees < 75 && len(sc.AttendeeEvents) > 0 {
		warnings = append(warnings, "one or more attendees may be unavailable")
	}
	return warnings
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
