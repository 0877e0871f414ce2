package repository

import (
	"context"
	"fmt"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/config"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
)

type openaiRepository struct {
	cfg    *config.Config
	logger *logger.Logger
	client *openai.Client
}

// NewOpenAIRepository creates an ExtractionRepository backed by the OpenAI
// chat completions API.
func NewOpenAIRepository(cfg *config.Config, log *logger.Logger) ExtractionRepository {
	clientCfg := openai.DefaultConfig(cfg.Extraction.OpenAI.APIKey)
	if cfg.Extraction.OpenAI.BaseURL != "" {
		clientCfg.BaseURL = cfg.Extraction.OpenAI.BaseURL
	}
	return &openaiRepository{
		cfg:    cfg,
		logger: log,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (r *openaiRepository) Extract(ctx context.Context, prompt string) (*dto.ExtractionResult, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.cfg.Extraction.OpenAI.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: r.cfg.Extraction.OpenAI.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no content found in OpenAI response")
	}

	r.logger.Debug("OpenAI extraction call finished",
		logger.IntField("prompt_tokens", resp.Usage.PromptTokens),
		logger.IntField("completion_tokens", resp.Usage.CompletionTokens),
	)

	return ParseExtractionResponse(resp.Choices[0].Message.Content)
}
