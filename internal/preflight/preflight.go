package preflight

import (
	"context"

	"reelsense/internal/config"
	"reelsense/internal/services/openaistt"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional failures degrade output but do not block an analysis run.
	Optional bool
	Detail   string
}

// Failed reports whether the result should block a run.
func (r Result) Failed() bool {
	return !r.Passed && !r.Optional
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		detail := status.Description
		if !status.Available {
			detail = status.Detail
		}
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   detail,
		})
	}

	results = append(results, CheckCreatableDirectory("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckCreatableDirectory("Cache directory", cfg.Paths.CacheDir))

	if cfg.Transcription.Backend == config.BackendOpenAI {
		results = append(results, CheckOpenAI(ctx, "OpenAI transcription", openaistt.Config{
			APIKey:  cfg.Transcription.OpenAIAPIKey,
			BaseURL: cfg.Transcription.OpenAIBaseURL,
			Model:   cfg.Transcription.OpenAIModel,
		}))
	}

	if cfg.Concepts.Enabled {
		results = append(results, CheckLLM(ctx, "Concept LLM", cfg.GetLLM()))
	}

	return results
}

// AnyFailed reports whether any non-optional check failed.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}
