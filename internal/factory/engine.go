package factory

import (
	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/config"
	"github.com/slotwise/scheduler/internal/engine"
	"github.com/slotwise/scheduler/internal/provider"
	"github.com/slotwise/scheduler/internal/store"
)

// NewSuggester builds the engine-backed suggester external providers delegate
// slot evaluation to.
func NewSuggester(s store.Store, cfg *config.Config, log zerolog.Logger) provider.Suggester {
	return engine.NewOrchestrator(s, engine.NewScorer(cfg.BufferMin), log)
}
