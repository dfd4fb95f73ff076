// Package factory constructs the configurable collaborators (storage driver,
// language-model provider) from process configuration. Construction happens
// once; results are cached for the process lifetime.
package factory

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/config"
	"github.com/slotwise/scheduler/internal/provider"
	"github.com/slotwise/scheduler/internal/provider/openai"
)

// ProviderFactory owns the process-wide provider instance. Get constructs on
// first use and returns the same instance afterwards, so a construction
// fallback is permanent for the process.
type ProviderFactory struct {
	once sync.Once
	p    provider.Provider
}

// Get returns the configured provider. External-provider construction
// failures never crash the process: they log a warning and fall back to the
// deterministic provider.
func (f *ProviderFactory) Get(cfg *config.Config, log zerolog.Logger, suggester provider.Suggester) provider.Provider {
	f.once.Do(func() {
		f.p = newProvider(cfg, log, suggester)
	})
	return f.p
}

func newProvider(cfg *config.Config, log zerolog.Logger, suggester provider.Suggester) provider.Provider {
	switch cfg.AIProvider {
	case "openai":
		p, err := openai.New(openai.Config{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			Timeout: time.Duration(cfg.ProviderTimeoutSeconds) * time.Second,
		}, suggester, log)
		if err != nil {
			log.Warn().Err(err).Msg("openai provider unavailable, falling back to deterministic provider")
			return provider.NewDeterministic()
		}
		return p
	case "", "deterministic":
		return provider.NewDeterministic()
	default:
		log.Warn().Str("provider", cfg.AIProvider).Msg("unknown provider, using deterministic")
		return provider.NewDeterministic()
	}
}
