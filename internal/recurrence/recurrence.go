// Package recurrence converts recurrence descriptors into RRULE strings and
// expands them into concrete occurrences within a window.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/slotwise/scheduler/internal/model"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// RuleString renders a Recurrence anchored at dtstart as an RRULE string
// suitable for persisting on an event.
func RuleString(rec model.Recurrence, dtstart time.Time) (string, error) {
	rule, err := buildRule(rec, dtstart)
	if err != nil {
		return "", err
	}
	return rule.String(), nil
}

// Expand returns the occurrence start times of ruleStr inside
// [windowStart, windowEnd], inclusive on both ends. Persisted rule strings
// carry no DTSTART, so the series is anchored at dtstart explicitly.
func Expand(ruleStr string, dtstart, windowStart, windowEnd time.Time) ([]time.Time, error) {
	rule, err := rrule.StrToRRule(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", ruleStr, err)
	}
	rule.DTStart(dtstart)
	return rule.Between(windowStart, windowEnd, true), nil
}

func buildRule(rec model.Recurrence, dtstart time.Time) (*rrule.RRule, error) {
	opt := rrule.ROption{Dtstart: dtstart}

	switch rec.Frequency {
	case model.FreqDaily:
		opt.Freq = rrule.DAILY
	case model.FreqWeekly:
		opt.Freq = rrule.WEEKLY
	case model.FreqMonthly:
		opt.Freq = rrule.MONTHLY
	default:
		return nil, fmt.Errorf("unsupported recurrence frequency %q", rec.Frequency)
	}

	opt.Interval = rec.Interval
	if opt.Interval <= 0 {
		opt.Interval = 1
	}
	for _, d := range rec.DaysOfWeek {
		opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
	}
	if rec.Until != nil {
		opt.Until = *rec.Until
	}
	if rec.Count > 0 {
		opt.Count = rec.Count
	}

	return rrule.NewRRule(opt)
}
