package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/api/recovery"
	"github.com/slotwise/scheduler/internal/api/respond"
	"github.com/slotwise/scheduler/internal/config"
	"github.com/slotwise/scheduler/internal/engine"
	"github.com/slotwise/scheduler/internal/provider"
	"github.com/slotwise/scheduler/internal/store"
)

// Deps carries the collaborators the router wires into handlers.
type Deps struct {
	Store     store.Store
	Attendees store.AttendeeReader
	Provider  provider.Provider
	Config    *config.Config
	Log       zerolog.Logger
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware(d.Log))

	if d.Attendees == nil {
		d.Attendees = store.EmptyAttendeeReader{}
	}

	scorer := engine.NewScorer(d.Config.BufferMin)
	orc := engine.NewOrchestrator(d.Store, scorer, d.Log)

	scheduleHandler := NewScheduleHandler(orc, d.Provider, d.Store, d.Attendees,
		d.Config.WorkingHours(), d.Config.AIEnabled, d.Log)
	eventHandler := NewEventHandler(d.Store, d.Log)

	// Health endpoint. Storage connectivity is checked when the driver
	// supports it.
	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if pinger, ok := d.Store.(store.Pinger); ok {
			if err := pinger.HealthPing(r.Context()); err != nil {
				d.Log.Error().Err(err).Msg("storage health check failed")
				respond.WriteError(w, http.StatusServiceUnavailable, "storage unreachable")
				return
			}
		}
		respond.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	// Scheduling endpoints
	router.HandleFunc("/api/schedule/parse", scheduleHandler.ParseIntent).Methods("POST")
	router.HandleFunc("/api/schedule/suggest", scheduleHandler.SuggestSlots).Methods("POST")
	router.HandleFunc("/api/schedule/commit", scheduleHandler.CommitSlot).Methods("POST")
	router.HandleFunc("/api/schedule/clarify", scheduleHandler.Clarify).Methods("POST")

	// Event endpoints
	router.HandleFunc("/api/users/{userId}/events", eventHandler.CreateEvent).Methods("POST")
	router.HandleFunc("/api/users/{userId}/events", eventHandler.ListEvents).Methods("GET")
	router.HandleFunc("/api/users/{userId}/events/{eventId}", eventHandler.GetEvent).Methods("GET")
	router.HandleFunc("/api/users/{userId}/events/{eventId}", eventHandler.DeleteEvent).Methods("DELETE")

	return router
}
