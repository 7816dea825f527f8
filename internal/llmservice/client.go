package llmservice

import (
	"strings"

	"cv-rag/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// New builds the generation model client from config. OpenRouter and
// OpenAI share the same wire protocol, so one client covers both.
func New(llmConfig *config.LLMConfig) (llms.Model, error) {
	return openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
}
