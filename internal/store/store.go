// Package store defines the persistence contract the scheduling engine
// depends on. Implementations live under internal/store/<driver>/.
package store

import (
	"context"
	"time"

	"github.com/slotwise/scheduler/internal/model"
)

// Store exposes persistence operations required by the engine and handlers.
type Store interface {
	Events() Events
}

// Events is the event read/write contract.
type Events interface {
	Create(ctx context.Context, ev *model.Event) (*model.Event, error)
	Get(ctx context.Context, ownerID, eventID string) (*model.Event, error)
	// ListWindow returns the owner's events whose start falls within
	// [WindowStart, WindowEnd], optionally scoped to a workspace.
	ListWindow(ctx context.Context, req model.ListEventsRequest) ([]model.Event, error)
	UpdateTimes(ctx context.Context, ownerID, eventID string, start, end time.Time) error
	Delete(ctx context.Context, ownerID, eventID string) error
}

// Pinger reports storage backend connectivity; drivers that can verify their
// connection implement it and the health endpoint consults it.
type Pinger interface {
	HealthPing(ctx context.Context) error
}

// AttendeeReader looks up attendees' events inside a window, keyed by
// attendee identifier.
type AttendeeReader interface {
	ListForAttendees(ctx context.Context, attendeeIDs []string, windowStart, windowEnd time.Time) (map[string][]model.Event, error)
}

// EmptyAttendeeReader is the shipped AttendeeReader: no cross-user calendar
// access is implemented, every attendee reads as free.
type EmptyAttendeeReader struct{}

func (EmptyAttendeeReader) ListForAttendees(ctx context.Context, attendeeIDs []string, windowStart, windowEnd time.Time) (map[string][]model.Event, error) {
	return map[string][]model.Event{}, nil
}
