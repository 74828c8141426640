package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spacesedan/ecsa/internal/metrics"
)

const (
	DEFAULT_LLM_TIMEOUT = 300 * time.Second
)

var ErrNoChoices = errors.New("chat completion returned no choices")

var (
	openAIClientInstance *OpenAIClient
	openAIOnce           sync.Once
)

// OpenAIClient talks to any OpenAI-compatible chat-completion API.
type OpenAIClient struct {
	Client *openai.Client
	Model  string
}

type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_LLM_TIMEOUT
	}

	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	config.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	return &OpenAIClient{
		Client: openai.NewClientWithConfig(config),
		Model:  opts.Model,
	}
}

// GetOpenAIClient returns the process-wide client, built on first use.
func GetOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	openAIOnce.Do(func() {
		if opts.APIKey == "" {
			slog.Warn("[OpenAIClient] No API key configured, remote calls will fail")
		}
		openAIClientInstance = NewOpenAIClient(opts)
		slog.Info("[OpenAIClient] Client initialized",
			slog.String("base_url", opts.BaseURL),
			slog.String("model", opts.Model),
			slog.Duration("timeout", opts.Timeout))
	})
	return openAIClientInstance
}

// Complete sends a single user prompt and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		metrics.RemoteCallsTotal.WithLabelValues("llm", "error").Inc()
		slog.Error("[OpenAIClient] Chat completion failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.RemoteCallsTotal.WithLabelValues("llm", "empty").Inc()
		return "", ErrNoChoices
	}

	metrics.RemoteCallsTotal.WithLabelValues("llm", "ok").Inc()
	slog.Info("[OpenAIClient] Chat completion successful",
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck lists models as a cheap authenticated round trip.
func (c *OpenAIClient) HealthCheck(ctx context.Context) bool {
	if _, err := c.Client.ListModels(ctx); err != nil {
		slog.Debug("[OpenAIClient] Health check failed", slog.String("error", err.Error()))
		return false
	}
	return true
}
