package openaistt

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	langpkg "reelsense/internal/language"
	"reelsense/internal/services"
)

const defaultHTTPTimeout = 5 * time.Minute

// ErrMissingAPIKey is returned when the client is built without an API key.
var ErrMissingAPIKey = errors.New("openai transcription: api key required")

// Config captures the settings for the hosted Whisper API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client transcribes audio files through the OpenAI audio API.
type Client struct {
	api   *openai.Client
	model string
}

// Option customizes the client.
type Option func(*openai.ClientConfig)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *openai.ClientConfig) {
		if client != nil {
			cfg.HTTPClient = client
		}
	}
}

// NewClient constructs a client. An empty API key yields ErrMissingAPIKey.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "openai", "set transcription.openai_api_key or OPENAI_API_KEY", ErrMissingAPIKey)
	}
	apiCfg := openai.DefaultConfig(key)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		apiCfg.BaseURL = base
	}
	apiCfg.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	for _, opt := range opts {
		opt(&apiCfg)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.Whisper1
	}
	return &Client{api: openai.NewClientWithConfig(apiCfg), model: model}, nil
}

// Model returns the hosted model identifier.
func (c *Client) Model() string {
	return c.model
}

// TranscribeFile uploads path and returns the transcript text.
func (c *Client) TranscribeFile(ctx context.Context, path, language string) (string, error) {
	req := openai.AudioRequest{
		Model:    c.model,
		FilePath: path,
		Language: langpkg.ToISO2(language),
		Format:   openai.AudioResponseFormatJSON,
	}
	resp, err := c.api.CreateTranscription(ctx, req)
	if err != nil {
		return "", classify(ctx, err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return services.Wrap(services.ErrTimeout, "transcribe", "openai", "request cancelled", err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized, apiErr.HTTPStatusCode == http.StatusForbidden:
			return services.Wrap(services.ErrConfiguration, "transcribe", "openai", "api key rejected", err)
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests, apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return services.Wrap(services.ErrTransient, "transcribe", "openai", "service unavailable", err)
		}
	}
	return services.Wrap(services.ErrExternalTool, "transcribe", "openai", "request failed", err)
}

// HealthCheck lists models to confirm the key is accepted.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return classify(ctx, err)
	}
	return nil
}
