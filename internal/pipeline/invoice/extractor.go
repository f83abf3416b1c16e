package invoice

import (
	"log/slog"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/llm"
	"github.com/joseph-ayodele/pantry-tracker/internal/llm/gemini"
	"github.com/joseph-ayodele/pantry-tracker/internal/llm/openai"
)

// NewExtractor builds the extraction client for cfg.Provider.
func NewExtractor(cfg common.LLMConfig, logger *slog.Logger) (llm.ItemExtractor, error) {
	switch cfg.Provider {
	case common.ProviderGemini:
		return gemini.NewClient(gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			BaseURL:     cfg.GeminiBaseURL,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case common.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	default:
		return nil, common.NewAppError(common.CodeConfig, "unknown LLM provider "+cfg.Provider, common.ErrInvalidInput)
	}
}
