package translate

import (
	"context"
	"fmt"

	"github.com/AntDavi/translation-server/internal/config"
	"github.com/AntDavi/translation-server/internal/core"
	"github.com/rs/zerolog/log"
)

// FromConfig builds the configured backend wrapped in a Guard.
func FromConfig(ctx context.Context, cfg config.TranslatorConfig) (core.Translator, error) {
	var backend core.Translator
	switch cfg.Provider {
	case config.ProviderIdentity:
		backend = Identity{}
	case config.ProviderGemini:
		g, err := NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		backend = g
	default:
		return nil, fmt.Errorf("unknown translator provider %q", cfg.Provider)
	}

	log.Info().Str("module", "adapters.translate").Str("provider", cfg.Provider).
		Dur("timeout", cfg.Timeout).Int64("max_concurrent", cfg.MaxConcurrent).Msg("translator ready")
	return NewGuard(backend, cfg.Timeout, cfg.MaxConcurrent), nil
}
