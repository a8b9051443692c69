package translate

import (
	"context"
	"fmt"

	"vidlingo/internal/config"
	"vidlingo/internal/services"
	"vidlingo/internal/services/googletranslate"
	"vidlingo/internal/services/llm"
)

// Provider names accepted in translation.provider.
const (
	ProviderGoogle = "google"
	ProviderLLM    = "llm"
)

// Backend is a Translator that can also verify connectivity.
type Backend interface {
	Translator
	HealthCheck(ctx context.Context) error
}

// New returns the backend selected by cfg.Translation.Provider.
func New(cfg *config.Config) (Backend, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "configure", "config required", nil)
	}
	switch cfg.Translation.Provider {
	case "", ProviderGoogle:
		return googletranslate.NewClient(googletranslate.Config{
			BaseURL:        cfg.Translation.BaseURL,
			TimeoutSeconds: cfg.Translation.TimeoutSeconds,
		}), nil
	case ProviderLLM:
		llmCfg := cfg.GetLLM()
		return llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			Referer:        llmCfg.Referer,
			Title:          llmCfg.Title,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, stage, "configure", fmt.Sprintf("unknown translation provider %q", cfg.Translation.Provider), nil)
	}
}
