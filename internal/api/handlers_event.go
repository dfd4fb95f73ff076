package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/api/respond"
	"github.com/slotwise/scheduler/internal/engine"
	"github.com/slotwise/scheduler/internal/model"
	"github.com/slotwise/scheduler/internal/store"
)

// EventHandler is a thin HTTP transport over the event store.
type EventHandler struct {
	store store.Store
	log   zerolog.Logger
}

func NewEventHandler(s store.Store, log zerolog.Logger) *EventHandler {
	return &EventHandler{store: s, log: log}
}

// CreateEvent POST /api/users/{userId}/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["userId"]
	var ev model.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if ev.Title == "" || !ev.End.After(ev.Start) {
		respond.WriteBadRequest(w, "title and a valid start/end are required")
		return
	}
	ev.ID = uuid.NewString()
	ev.OwnerID = ownerID
	ev.Priority = model.ParsePriority(string(ev.Priority))

	out, err := h.store.Events().Create(r.Context(), &ev)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListEvents GET /api/users/{userId}/events?windowStart=...&windowEnd=...&workspaceId=...&expand=true
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["userId"]
	q := r.URL.Query()

	windowStart, err := parseTimeParam(q.Get("windowStart"), time.Now().AddDate(0, 0, -7))
	if err != nil {
		respond.WriteBadRequest(w, "invalid windowStart")
		return
	}
	windowEnd, err := parseTimeParam(q.Get("windowEnd"), time.Now().AddDate(0, 0, 30))
	if err != nil {
		respond.WriteBadRequest(w, "invalid windowEnd")
		return
	}

	req := model.ListEventsRequest{OwnerID: ownerID, WindowStart: windowStart, WindowEnd: windowEnd}
	if ws := q.Get("workspaceId"); ws != "" {
		req.WorkspaceID = &ws
	}

	events, err := h.store.Events().ListWindow(r.Context(), req)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}

	payload := map[string]interface{}{"events": events, "count": len(events)}
	if q.Get("expand") == "true" {
		payload["occurrences"] = expandOccurrences(events, windowStart, windowEnd, h.log)
	}
	respond.WriteJSON(w, http.StatusOK, payload)
}

// GetEvent GET /api/users/{userId}/events/{eventId}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ev, err := h.store.Events().Get(r.Context(), vars["userId"], vars["eventId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, ev)
}

// DeleteEvent DELETE /api/users/{userId}/events/{eventId}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.store.Events().Delete(r.Context(), vars["userId"], vars["eventId"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTimeParam(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, s)
}

// expandOccurrences maps event IDs to their occurrence start times inside the
// window, honoring recurrence rules. An event with a malformed persisted rule
// is logged and omitted rather than failing the listing.
func expandOccurrences(events []model.Event, windowStart, windowEnd time.Time, log zerolog.Logger) map[string][]time.Time {
	out := make(map[string][]time.Time, len(events))
	for _, ev := range events {
		occurrences, err := engine.ExpandRecurring(ev, windowStart, windowEnd)
		if err != nil {
			log.Warn().Err(err).Str("event_id", ev.ID).Msg("recurrence expansion failed")
			continue
		}
		out[ev.ID] = occurrences
	}
	return out
}
