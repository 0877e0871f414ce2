package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/config"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
)

type anthropicRepository struct {
	cfg        *config.Config
	logger     *logger.Logger
	httpClient *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	System    string             `json:"system,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicRepository creates an ExtractionRepository backed by the
// Anthropic Messages API.
func NewAnthropicRepository(cfg *config.Config, log *logger.Logger) ExtractionRepository {
	return &anthropicRepository{
		cfg:    cfg,
		logger: log,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (r *anthropicRepository) Extract(ctx context.Context, prompt string) (*dto.ExtractionResult, error) {
	apiReq := anthropicRequest{
		Model:     r.cfg.Extraction.Anthropic.Model,
		MaxTokens: r.cfg.Extraction.Anthropic.MaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	resp, err := r.makeRequest(ctx, apiReq)
	if err != nil {
		return nil, err
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("no content in Anthropic response")
	}

	r.logger.Debug("Anthropic extraction call finished",
		logger.IntField("input_tokens", resp.Usage.InputTokens),
		logger.IntField("output_tokens", resp.Usage.OutputTokens),
	)

	return ParseExtractionResponse(resp.Content[0].Text)
}

func (r *anthropicRepository) makeRequest(ctx context.Context, apiReq anthropicRequest) (*anthropicResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", strings.TrimSuffix(r.cfg.Extraction.Anthropic.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", r.cfg.Extraction.Anthropic.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	httpResp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Anthropic API: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr anthropicError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("received non-OK response from Anthropic API: %d - %s: %s", httpResp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("received non-OK response from Anthropic API: %d - %s", httpResp.StatusCode, string(respBody))
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return &resp, nil
}
