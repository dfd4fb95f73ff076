package engine

import (
	"time"

	"github.com/slotwise/scheduler/internal/model"
)

// DetectConflicts returns one ConflictInfo per existing event overlapping
// [slotStart, slotEnd). Overlap is half-open: touching endpoints do not
// conflict. Pure function, no side effects.
func DetectConflicts(slotStart, slotEnd time.Time, existing []model.Event) []model.ConflictInfo {
	var out []model.ConflictInfo
	for _, ev := range existing {
		if !overlaps(slotStart, slotEnd, ev.Start, ev.End) {
			continue
		}
		severity := model.SeveritySoft
		if ev.IsImmutable {
			severity = model.SeverityHard
		}
		out = append(out, model.ConflictInfo{
			EventID:  ev.ID,
			Title:    ev.Title,
			Start:    ev.Start,
			End:      ev.End,
			Severity: severity,
			CanMove:  !ev.IsImmutable && (ev.Priority == model.PriorityLow || ev.IsFlexible),
			Priority: ev.Priority,
		})
	}
	return out
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
