package repository

import (
	"fmt"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/config"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
)

// NewExtractionRepository builds the configured extraction provider.
func NewExtractionRepository(cfg *config.Config, log *logger.Logger) (ExtractionRepository, error) {
	switch cfg.Extraction.Provider {
	case "anthropic":
		if cfg.Extraction.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("anthropic extraction selected but api key is empty")
		}
		return NewAnthropicRepository(cfg, log), nil
	case "openai":
		if cfg.Extraction.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai extraction selected but api key is empty")
		}
		return NewOpenAIRepository(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Extraction.Provider)
	}
}
