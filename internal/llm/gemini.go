package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient implements Client for the Gemini API via the genai SDK.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int
	logger    *zap.Logger

	retryAttempts int
	retryBackoff  time.Duration
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Logger    *zap.Logger
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:    apiKey,
		Model:     "gemini-2.0-flash",
		MaxTokens: defaultMaxTokens,
		Timeout:   defaultClientTimeout,
	}
}

// NewGeminiClient creates a new Gemini client with default config.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	return NewGeminiClientWithConfig(ctx, DefaultGeminiConfig(apiKey))
}

// NewGeminiClientWithConfig creates a new Gemini client with custom config.
func NewGeminiClientWithConfig(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}
	if config.Timeout == 0 {
		config.Timeout = defaultClientTimeout
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     config.APIKey,
		HTTPClient: &http.Client{Timeout: config.Timeout},
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:        client,
		model:         config.Model,
		maxTokens:     config.MaxTokens,
		logger:        logger,
		retryAttempts: rateLimitAttempts,
		retryBackoff:  rateLimitBackoff,
	}, nil
}

// Complete sends a prompt and returns the completion.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with a system message.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqID := uuid.New().String()[:8]
	c.logger.Debug("sending completion request",
		zap.String("request_id", reqID),
		zap.String("model", c.model),
		zap.Int("system_len", len(systemPrompt)),
		zap.Int("user_len", len(userPrompt)))

	genConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(c.maxTokens),
	}
	if systemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(c.retryBackoff)
		}

		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), genConfig)
		if err != nil {
			if isGeminiRateLimit(err) {
				lastErr = fmt.Errorf("rate limit exceeded (429)")
				c.logger.Warn("rate limited, backing off",
					zap.String("request_id", reqID),
					zap.Int("attempt", attempt),
					zap.Duration("backoff", c.retryBackoff))
				continue
			}
			return "", fmt.Errorf("request failed: %w", err)
		}

		result := strings.TrimSpace(resp.Text())
		if result == "" {
			return "", fmt.Errorf("no completion returned")
		}
		return result, nil
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isGeminiRateLimit reports whether err is the SDK's resource-exhausted error.
func isGeminiRateLimit(err error) bool {
	var apiErr genai.APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}

// SetModel changes the model used for completions.
func (c *GeminiClient) SetModel(model string) {
	c.model = model
}

// GetModel returns the current model.
func (c *GeminiClient) GetModel() string {
	return c.model
}
