package engine

import (
	"fmt"
	"time"

	"github.com/slotwise/scheduler/internal/model"
)

// MoveBufferMinutes is the fixed gap inserted between the claimed slot and a
// relocated event.
const MoveBufferMinutes = 15

// ProposeMoves suggests relocations for movable conflicting events: a single
// forward probe to slotEnd plus the buffer, preserving each event's duration.
// A proposal is dropped when the probed interval overlaps any other existing
// event; no further search is attempted. Conflicts with CanMove=false are
// never proposed regardless of severity.
func ProposeMoves(conflicts []model.ConflictInfo, slotStart, slotEnd time.Time, allEvents []model.Event) []model.EventMove {
	var out []model.EventMove
	for _, c := range conflicts {
		if !c.CanMove {
			continue
		}
		duration := c.End.Sub(c.Start)
		proposedStart := slotEnd.Add(MoveBufferMinutes * time.Minute)
		proposedEnd := proposedStart.Add(duration)

		if overlapsAnyExcept(proposedStart, proposedEnd, allEvents, c.EventID) {
			continue
		}
		out = append(out, model.EventMove{
			EventID:       c.EventID,
			Title:         c.Title,
			CurrentStart:  c.Start,
			CurrentEnd:    c.End,
			ProposedStart: proposedStart,
			ProposedEnd:   proposedEnd,
			Reason:        fmt.Sprintf("relocated to clear %s-%s for the new event", slotStart.Format("15:04"), slotEnd.Format("15:04")),
		})
	}
	return out
}

func overlapsAnyExcept(start, end time.Time, events []model.Event, exceptID string) bool {
	for _, ev := range events {
		if ev.ID == exceptID {
			continue
		}
		if overlaps(start, end, ev.Start, ev.End) {
			return true
		}
	}
	return false
}
