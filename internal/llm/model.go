package llm

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/marketbrief/marketbrief/internal/config"
	"github.com/marketbrief/marketbrief/internal/fault"
)

// NewChatModel builds the chat model for the configured provider. Groq is
// OpenAI-compatible, so it runs through the openai component with the Groq
// backend URL.
func NewChatModel(ctx context.Context, cfg *config.Config, modelName string) (model.BaseChatModel, error) {
	maxTokens := 2000

	switch cfg.LLMProvider {
	case "deepseek":
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     modelName,
			MaxTokens: maxTokens,
			Timeout:   cfg.RequestTimeout,
		})
	default:
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.GroqAPIKey,
			Model:     modelName,
			MaxTokens: &maxTokens,
			Timeout:   cfg.RequestTimeout,
		})
	}
}

// Ping issues a minimal completion to verify the endpoint answers.
func Ping(ctx context.Context, cm model.BaseChatModel) error {
	_, err := cm.Generate(ctx, []*schema.Message{schema.UserMessage("ping")})
	if err != nil {
		return &fault.TransportError{Op: "llm ping", Err: err}
	}
	return nil
}
