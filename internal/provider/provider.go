// Package provider abstracts the language-model backends used for intent
// parsing, slot suggestion and clarification generation. The deterministic
// provider is always available; external providers are selected by
// configuration and must be safely substitutable with it.
package provider

import (
	"context"

	"github.com/slotwise/scheduler/internal/model"
)

// Provider is the capability set a scheduling backend exposes.
type Provider interface {
	ParseIntent(ctx context.Context, text string, sc model.SchedulingContext) (model.ParsedIntent, error)
	SuggestSlots(ctx context.Context, sc model.SchedulingContext) ([]model.SuggestedSlot, error)
	GenerateClarification(ctx context.Context, text string, ambiguities []string) (string, error)
}

// Suggester is the slice of the scheduling engine external providers delegate
// candidate evaluation to.
type Suggester interface {
	Suggest(ctx context.Context, sc model.SchedulingContext) ([]model.SuggestedSlot, error)
}
