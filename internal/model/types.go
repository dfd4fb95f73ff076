package model

import (
	"fmt"
	"time"
)

// Priority ranks how important an event is to its owner.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority normalizes a priority string, defaulting to medium.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s)
	}
	return PriorityMedium
}

// Event is a persisted calendar entry.
type Event struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	WorkspaceID    *string   `json:"workspaceId,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Location       *string   `json:"location,omitempty"`
	Priority       Priority  `json:"priority"`
	IsFlexible     bool      `json:"isFlexible"`
	IsImmutable    bool      `json:"isImmutable"`
	RecurrenceRule *string   `json:"recurrenceRule,omitempty"`
	CreationTime   time.Time `json:"creationTime"`
}

// RecurrenceFrequency is how often a recurring event repeats.
type RecurrenceFrequency string

const (
	FreqDaily   RecurrenceFrequency = "daily"
	FreqWeekly  RecurrenceFrequency = "weekly"
	FreqMonthly RecurrenceFrequency = "monthly"
)

// Recurrence describes a repetition pattern extracted from a request.
type Recurrence struct {
	Frequency  RecurrenceFrequency `json:"frequency"`
	Interval   int                 `json:"interval"`
	DaysOfWeek []time.Weekday      `json:"daysOfWeek,omitempty"`
	Until      *time.Time          `json:"until,omitempty"`
	Count      int                 `json:"count,omitempty"`
}

// TimeOfDay is a wall-clock time within a day, timezone-agnostic.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Minutes returns the offset from midnight in minutes.
func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// On returns the instant at this time-of-day on day's date, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

// ParseTimeOfDay accepts "HH:MM" in 24-hour form.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var tod TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &tod.Hour, &tod.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if tod.Hour < 0 || tod.Hour > 23 || tod.Minute < 0 || tod.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return tod, nil
}

// WorkingHours bounds the daily window candidates are preferentially drawn from.
type WorkingHours struct {
	Start    TimeOfDay `json:"start"`
	End      TimeOfDay `json:"end"`
	TimeZone string    `json:"timeZone,omitempty"`
}

// Constraints narrow where candidate slots may start.
type Constraints struct {
	NotBefore     *TimeOfDay     `json:"notBefore,omitempty"`
	NotAfter      *TimeOfDay     `json:"notAfter,omitempty"`
	PreferredDays []time.Weekday `json:"preferredDays,omitempty"`
	AvoidDays     []time.Weekday `json:"avoidDays,omitempty"`
}

// Ambiguity names used by intent extraction. An unresolved ambiguity blocks
// automatic scheduling until the requester clarifies it.
const (
	AmbiguityStartTime = "start_time"
	AmbiguityTitle     = "title"
)

// ParsedIntent is the normalized interpretation of a free-text scheduling
// request. It is immutable once handed to the orchestrator and is never
// persisted; only the resulting event is.
type ParsedIntent struct {
	Title           *string     `json:"title,omitempty"`
	Description     *string     `json:"description,omitempty"`
	Start           *time.Time  `json:"start,omitempty"`
	End             *time.Time  `json:"end,omitempty"`
	DurationMinutes *int        `json:"durationMinutes,omitempty"`
	Recurrence      *Recurrence `json:"recurrence,omitempty"`
	Attendees       []string    `json:"attendees,omitempty"`
	Location        *string     `json:"location,omitempty"`
	Priority        Priority    `json:"priority"`
	IsFlexible      bool        `json:"isFlexible"`
	IsImmutable     bool        `json:"isImmutable"`
	Constraints     Constraints `json:"constraints"`
	Confidence      float64     `json:"confidence"`
	Ambiguities     []string    `json:"ambiguities,omitempty"`
}

// HasAmbiguity reports whether the named ambiguity was recorded.
func (p ParsedIntent) HasAmbiguity(name string) bool {
	for _, a := range p.Ambiguities {
		if a == name {
			return true
		}
	}
	return false
}

// SchedulingContext is the bounded universe for one scheduling request:
// requester, window, policy, and the already-fetched event snapshots.
// Created per request, discarded after.
type SchedulingContext struct {
	RequesterID    string             `json:"requesterId"`
	WorkspaceID    *string            `json:"workspaceId,omitempty"`
	Intent         ParsedIntent       `json:"intent"`
	WindowStart    time.Time          `json:"windowStart"`
	WindowEnd      time.Time          `json:"windowEnd"`
	WorkingHours   *WorkingHours      `json:"workingHours,omitempty"`
	ExistingEvents []Event            `json:"existingEvents,omitempty"`
	AttendeeEvents map[string][]Event `json:"attendeeEvents,omitempty"`
}

// ConflictSeverity classifies how negotiable an overlap is.
type ConflictSeverity string

const (
	// SeverityHard marks an overlap with an immutable event; disqualifying.
	SeverityHard ConflictSeverity = "hard"
	// SeveritySoft marks a negotiable overlap.
	SeveritySoft ConflictSeverity = "soft"
)

// ConflictInfo describes one existing event overlapping a candidate slot.
type ConflictInfo struct {
	EventID  string           `json:"eventId"`
	Title    string           `json:"title"`
	Start    time.Time        `json:"start"`
	End      time.Time        `json:"end"`
	Severity ConflictSeverity `json:"severity"`
	CanMove  bool             `json:"canMove"`
	Priority Priority         `json:"priority"`
}

// EventMove is a proposed relocation for a movable conflicting event.
type EventMove struct {
	EventID       string    `json:"eventId"`
	Title         string    `json:"title"`
	CurrentStart  time.Time `json:"currentStart"`
	CurrentEnd    time.Time `json:"currentEnd"`
	ProposedStart time.Time `json:"proposedStart"`
	ProposedEnd   time.Time `json:"proposedEnd"`
	Reason        string    `json:"reason"`
}

// ScoreBreakdown reports the component scores behind a composite, each 0-100.
type ScoreBreakdown struct {
	Availability int `json:"availability"`
	Preference   int `json:"preference"`
	Attendees    int `json:"attendees"`
	Disruption   int `json:"disruption"`
}

// SuggestedSlot is a scored candidate interval.
type SuggestedSlot struct {
	ID            string         `json:"id"`
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
	Score         int            `json:"score"`
	Breakdown     ScoreBreakdown `json:"breakdown"`
	Conflicts     []ConflictInfo `json:"conflicts,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
	Reason        string         `json:"reason"`
	RequiredMoves []EventMove    `json:"requiredMoves,omitempty"`
}

// CommitResult reports the outcome of committing a slot, including any events
// that were actually relocated before the failure point if the commit did not
// complete.
type CommitResult struct {
	EventID     string      `json:"eventId,omitempty"`
	MovedEvents []EventMove `json:"movedEvents,omitempty"`
}

// ListEventsRequest captures the filters for an event window query.
type ListEventsRequest struct {
	OwnerID     string
	WorkspaceID *string
	WindowStart time.Time
	WindowEnd   time.Time
}
