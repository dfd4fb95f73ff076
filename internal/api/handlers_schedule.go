package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/api/respond"
	"github.com/slotwise/scheduler/internal/engine"
	"github.com/slotwise/scheduler/internal/model"
	"github.com/slotwise/scheduler/internal/provider"
	"github.com/slotwise/scheduler/internal/store"
)

// ScheduleHandler is the HTTP transport over the scheduling engine.
type ScheduleHandler struct {
	orc          *engine.Orchestrator
	provider     provider.Provider
	fallback     *provider.Deterministic
	store        store.Store
	attendees    store.AttendeeReader
	workingHours model.WorkingHours
	aiEnabled    bool
	log          zerolog.Logger
}

func NewScheduleHandler(orc *engine.Orchestrator, p provider.Provider, s store.Store, attendees store.AttendeeReader, wh model.WorkingHours, aiEnabled bool, log zerolog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		orc:          orc,
		provider:     p,
		fallback:     provider.NewDeterministic(),
		store:        s,
		attendees:    attendees,
		workingHours: wh,
		aiEnabled:    aiEnabled,
		log:          log,
	}
}

// effectiveProvider honors the global AI feature flag: when disabled, every
// endpoint runs on the deterministic provider.
func (h *ScheduleHandler) effectiveProvider() provider.Provider {
	if !h.aiEnabled {
		return h.fallback
	}
	return h.provider
}

type parseRequest struct {
	Text          string     `json:"text"`
	ReferenceTime *time.Time `json:"referenceTime,omitempty"`
}

// ParseIntent POST /api/schedule/parse
func (h *ScheduleHandler) ParseIntent(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Text == "" {
		respond.WriteBadRequest(w, "text is required")
		return
	}
	ref := time.Now()
	if req.ReferenceTime != nil {
		ref = *req.ReferenceTime
	}

	intent, err := h.effectiveProvider().ParseIntent(r.Context(), req.Text, model.SchedulingContext{WindowStart: ref})
	if err != nil {
		h.log.Error().Err(err).Msg("intent parsing failed")
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, intent)
}

type suggestRequest struct {
	RequesterID  string              `json:"requesterId"`
	WorkspaceID  *string             `json:"workspaceId,omitempty"`
	Text         string              `json:"text,omitempty"`
	Intent       *model.ParsedIntent `json:"intent,omitempty"`
	WindowStart  time.Time           `json:"windowStart"`
	WindowEnd    time.Time           `json:"windowEnd"`
	WorkingHours *model.WorkingHours `json:"workingHours,omitempty"`
}

// SuggestSlots POST /api/schedule/suggest
func (h *ScheduleHandler) SuggestSlots(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	sc, err := h.buildContext(r.Context(), req)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}

	slots, err := h.effectiveProvider().SuggestSlots(r.Context(), *sc)
	if err != nil {
		h.log.Error().Err(err).Str("requester", req.RequesterID).Msg("slot suggestion failed")
		respond.WriteDomainError(w, err)
		return
	}
	// An empty list is a valid outcome, not an error.
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"slots":  slots,
		"count":  len(slots),
		"intent": sc.Intent,
	})
}

type commitRequest struct {
	RequesterID          string              `json:"requesterId"`
	WorkspaceID          *string             `json:"workspaceId,omitempty"`
	Intent               model.ParsedIntent  `json:"intent"`
	Slot                 model.SuggestedSlot `json:"slot"`
	AutoResolveConflicts bool                `json:"autoResolveConflicts"`
}

// CommitSlot POST /api/schedule/commit
func (h *ScheduleHandler) CommitSlot(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	sc := model.SchedulingContext{
		RequesterID: req.RequesterID,
		WorkspaceID: req.WorkspaceID,
		Intent:      req.Intent,
	}
	res, err := h.orc.Commit(r.Context(), sc, req.Slot, req.AutoResolveConflicts)
	if err != nil {
		if res != nil {
			// Partial commit: surface which events remain moved.
			respond.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":       err.Error(),
				"movedEvents": res.MovedEvents,
			})
			return
		}
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, res)
}

type clarifyRequest struct {
	Text        string   `json:"text"`
	Ambiguities []string `json:"ambiguities"`
}

// Clarify POST /api/schedule/clarify
func (h *ScheduleHandler) Clarify(w http.ResponseWriter, r *http.Request) {
	var req clarifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	question, err := h.effectiveProvider().GenerateClarification(r.Context(), req.Text, req.Ambiguities)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"question": question})
}

// buildContext assembles the request-scoped scheduling universe: parsed
// intent, window, working-hours policy, and the event snapshots.
func (h *ScheduleHandler) buildContext(ctx context.Context, req suggestRequest) (*model.SchedulingContext, error) {
	sc := model.SchedulingContext{
		RequesterID:  req.RequesterID,
		WorkspaceID:  req.WorkspaceID,
		WindowStart:  req.WindowStart,
		WindowEnd:    req.WindowEnd,
		WorkingHours: req.WorkingHours,
	}
	if sc.WorkingHours == nil {
		wh := h.workingHours
		sc.WorkingHours = &wh
	}

	switch {
	case req.Intent != nil:
		sc.Intent = *req.Intent
	case req.Text != "":
		parsed, err := h.effectiveProvider().ParseIntent(ctx, req.Text, sc)
		if err != nil {
			return nil, err
		}
		sc.Intent = parsed
	}

	events, err := h.store.Events().ListWindow(ctx, model.ListEventsRequest{
		OwnerID:     req.RequesterID,
		WorkspaceID: req.WorkspaceID,
		WindowStart: req.WindowStart,
		WindowEnd:   req.WindowEnd,
	})
	if err != nil {
		return nil, err
	}
	sc.ExistingEvents = events

	if len(sc.Intent.Attendees) > 0 {
		attendeeEvents, err := h.attendees.ListForAttendees(ctx, sc.Intent.Attendees, req.WindowStart, req.WindowEnd)
		if err != nil {
			return nil, err
		}
		sc.AttendeeEvents = attendeeEvents
	}
	return &sc, nil
}
