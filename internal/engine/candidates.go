// Package engine implements the time-slot scheduling engine: candidate
// generation, conflict detection, multi-factor scoring, conflict-resolution
// move proposals, and the suggest/commit orchestration on top of them.
package engine

import (
	"time"

	"github.com/slotwise/scheduler/internal/model"
)

const (
	// SlotStepMinutes is the fixed distance between consecutive candidate starts.
	SlotStepMinutes = 30
	// DefaultDurationMinutes applies when an intent carries no duration.
	DefaultDurationMinutes = 60

	// maxCandidateIterations bounds generation so contradictory constraints
	// still terminate.
	maxCandidateIterations = 1000
)

// Candidate is an evaluable time slot.
type Candidate struct {
	Start time.Time
	End   time.Time
}

// GenerateCandidates produces the finite, ascending sequence of candidate
// slots inside [windowStart, windowEnd). Working hours, when supplied, snap
// the cursor into the daily window; constraints skip the cursor forward
// without emitting.
func GenerateCandidates(windowStart, windowEnd time.Time, durationMinutes int, wh *model.WorkingHours, cons *model.Constraints) []Candidate {
	if durationMinutes <= 0 {
		durationMinutes = DefaultDurationMinutes
	}
	duration := time.Duration(durationMinutes) * time.Minute
	step := SlotStepMinutes * time.Minute

	cursor := windowStart
	if wh != nil && minutesOfDay(cursor) < wh.Start.Minutes() {
		cursor = wh.Start.On(cursor)
	}

	var out []Candidate
	for i := 0; i < maxCandidateIterations && cursor.Before(windowEnd); i++ {
		if wh != nil {
			if minutesOfDay(cursor) >= wh.End.Minutes() {
				cursor = wh.Start.On(cursor.AddDate(0, 0, 1))
				continue
			}
			if minutesOfDay(cursor) < wh.Start.Minutes() {
				cursor = wh.Start.On(cursor)
				continue
			}
		}
		if cons != nil {
			if cons.NotBefore != nil && minutesOfDay(cursor) < cons.NotBefore.Minutes() {
				cursor = cons.NotBefore.On(cursor)
				continue
			}
			if cons.NotAfter != nil && minutesOfDay(cursor) > cons.NotAfter.Minutes() {
				cursor = startOfNextDay(cursor, wh)
				continue
			}
			if len(cons.PreferredDays) > 0 && !containsWeekday(cons.PreferredDays, cursor.Weekday()) {
				cursor = startOfNextDay(cursor, wh)
				continue
			}
			if containsWeekday(cons.AvoidDays, cursor.Weekday()) {
				cursor = startOfNextDay(cursor, wh)
				continue
			}
		}
		out = append(out, Candidate{Start: cursor, End: cursor.Add(duration)})
		cursor = cursor.Add(step)
	}
	return out
}

func minutesOfDay(t time.Time) int { return t.Hour()*60 + t.Minute() }

func startOfNextDay(t time.Time, wh *model.WorkingHours) time.Time {
	next := t.AddDate(0, 0, 1)
	if wh != nil {
		return wh.Start.On(next)
	}
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, next.Location())
}

func containsWeekday(days []time.Weekday, d time.Weekday) bool {
	for _, v := range days {
		if v == d {
			return true
		}
	}
	return false
}
