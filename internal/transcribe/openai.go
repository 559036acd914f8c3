package transcribe

import (
	"context"

	"reelsense/internal/services/openaistt"
)

// OpenAI transcribes through the hosted audio API.
type OpenAI struct {
	client *openaistt.Client
}

// NewOpenAI wraps a configured client.
func NewOpenAI(client *openaistt.Client) *OpenAI {
	return &OpenAI{client: client}
}

// Name implements Transcriber.
func (o *OpenAI) Name() string { return "openai" }

// Model implements Transcriber.
func (o *OpenAI) Model() string { return o.client.Model() }

// Transcribe implements Transcriber.
func (o *OpenAI) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	return o.client.TranscribeFile(ctx, audioPath, language)
}
