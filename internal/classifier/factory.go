package classifier

import (
	"fmt"
	"log/slog"

	"task-assistant/internal/config"
)

// New builds the configured classifier, wrapped in a cache when
// cfg.CacheSize is positive.
func New(cfg config.ClassifierConfig, logger *slog.Logger) (Classifier, error) {
	var c Classifier
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c = NewOpenAIClient(OpenAIConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, nil, logger)
	case config.ProviderEcho:
		c = Echo{}
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}

	if cfg.CacheSize > 0 {
		return NewCached(c, cfg.CacheSize)
	}
	return c, nil
}
