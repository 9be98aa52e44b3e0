// Package openrouter sends chat completions to an OpenAI-compatible API,
// OpenRouter by default.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"spillthepill/internal/domain"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

var (
	// ErrNoAPIKey is returned by Complete when no key is configured.
	ErrNoAPIKey = errors.New("openrouter: no API key configured")
	// ErrEmptyCompletion is returned when the API answers without choices.
	ErrEmptyCompletion = errors.New("openrouter: completion has no choices")
)

// Client implements domain.ChatCompleter.
type Client struct {
	api   *openai.Client
	model string
	ready bool
	log   *slog.Logger
}

func New(apiKey, baseURL, model string, hc *http.Client, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	if hc != nil {
		cfg.HTTPClient = hc
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
		ready: apiKey != "",
		log:   log,
	}
}

// Complete sends messages to the configured model and returns the first
// choice. Callers classify the error.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage, maxTokens int) (string, error) {
	if !c.ready {
		return "", ErrNoAPIKey
	}

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  make([]openai.ChatCompletionMessage, 0, len(messages)),
		MaxTokens: maxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			c.log.WarnContext(ctx, "completion rejected", "model", c.model, "status", apiErr.HTTPStatusCode, "error", apiErr.Message)
		}
		return "", fmt.Errorf("openrouter: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
