package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reelsense/internal/config"
	"reelsense/internal/services"
	"reelsense/internal/services/openaistt"
	"reelsense/internal/services/whisperx"
)

// Transcriber converts an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
	// Name identifies the backend ("whisperx" or "openai").
	Name() string
	// Model is the backend model identifier recorded in results.
	Model() string
}

// New builds the backend selected by cfg.Transcription.Backend. modelSize
// overrides the configured model size when non-empty.
func New(cfg *config.Config, modelSize string, logger *slog.Logger) (Transcriber, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "init", "config required", nil)
	}
	size := strings.ToLower(strings.TrimSpace(modelSize))
	if size == "" {
		size = cfg.Transcription.Model
	}
	if !config.ValidModelSize(size) {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "init",
			fmt.Sprintf("model %q not one of %s", size, strings.Join(config.ModelSizes, ", ")), nil)
	}

	switch cfg.Transcription.Backend {
	case config.BackendOpenAI:
		client, err := openaistt.NewClient(openaistt.Config{
			APIKey:  cfg.Transcription.OpenAIAPIKey,
			BaseURL: cfg.Transcription.OpenAIBaseURL,
			Model:   cfg.Transcription.OpenAIModel,
		})
		if err != nil {
			return nil, err
		}
		return NewOpenAI(client), nil
	case config.BackendWhisperX, "":
		svc := whisperx.NewService(whisperx.Config{
			Model:       size,
			CUDAEnabled: cfg.Transcription.CUDAEnabled,
			VADMethod:   cfg.Transcription.VADMethod,
			HFToken:     cfg.Transcription.HFToken,
		})
		return NewWhisperX(svc, cfg.WhisperXWorkDir(), logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "init",
			fmt.Sprintf("unknown backend %q", cfg.Transcription.Backend), nil)
	}
}
