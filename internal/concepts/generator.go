package concepts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"reelsense/internal/logging"
	"reelsense/internal/services/llm"
	"reelsense/internal/textutil"
)

// similarityWarnThreshold flags batch concepts that read almost the same.
const similarityWarnThreshold = 0.85

// Generator produces reel concepts through an OpenRouter chat model.
type Generator struct {
	client *llm.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewGenerator builds a generator. It fails with llm.ErrMissingAPIKey when
// no key is configured so callers can skip concept generation up front.
func NewGenerator(cfg llm.Config, logger *slog.Logger, opts ...llm.Option) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, llm.ErrMissingAPIKey
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1500
	}
	return &Generator{
		client: llm.NewClient(cfg, opts...),
		logger: logging.NewComponentLogger(logger, "concepts"),
		now:    time.Now,
	}, nil
}

// Model returns the chat model identifier.
func (g *Generator) Model() string {
	return g.client.Model()
}

// Generate asks the model for one concept. It never fails: request or
// parse errors are logged and the fallback concept is returned instead.
func (g *Generator) Generate(ctx context.Context, in Input) Concept {
	started := g.now()
	content, err := g.client.Complete(ctx, systemPrompt, buildUserPrompt(in))
	if err != nil {
		logging.WarnWithContext(g.logger, "concept request failed", "concept_request_failed",
			logging.Error(err),
			logging.String("model", g.client.Model()),
			logging.String(logging.FieldErrorHint, "check the OpenRouter API key and model availability"),
			logging.String(logging.FieldImpact, "fallback concept used"),
		)
		return Fallback(in, g.now())
	}
	concept, err := parseConcept(content)
	if err != nil {
		logging.WarnWithContext(g.logger, "concept response unparseable", "concept_parse_failed",
			logging.Error(err),
			logging.Int("content_length", len(content)),
			logging.String(logging.FieldErrorHint, "try a model that follows JSON instructions"),
			logging.String(logging.FieldImpact, "fallback concept used"),
		)
		return Fallback(in, g.now())
	}
	concept.stamp(in, g.client.Model(), g.now())
	g.logger.Info("concept generated",
		logging.String("title", concept.Title()),
		logging.Duration("elapsed", g.now().Sub(started)),
	)
	return concept
}

// GenerateMany requests count concepts sequentially and numbers them.
func (g *Generator) GenerateMany(ctx context.Context, in Input, count int) []Concept {
	if count < 1 {
		count = 1
	}
	out := make([]Concept, 0, count)
	fingerprints := make([]*textutil.Fingerprint, 0, count)
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			g.logger.Info("concept generation cancelled", logging.Int("generated", len(out)))
			break
		}
		concept := g.Generate(ctx, in)
		concept["concept_number"] = i + 1
		concept["variation_style"] = fmt.Sprintf("Style %d", i+1)

		fp := textutil.NewFingerprint(concept.Text())
		if !concept.IsFallback() {
			for j, prev := range fingerprints {
				if prev == nil || fp == nil {
					continue
				}
				if sim := textutil.CosineSimilarity(fp, prev); sim > similarityWarnThreshold {
					logging.WarnWithContext(g.logger, "concept closely matches an earlier one", "concept_near_duplicate",
						logging.Int("concept_number", i+1),
						logging.Int("matches", j+1),
						logging.Float64("similarity", sim),
						logging.String(logging.FieldErrorHint, "raise llm.temperature for more varied concepts"),
						logging.String(logging.FieldImpact, "concepts may be repetitive"),
					)
					break
				}
			}
			fingerprints = append(fingerprints, fp)
		}
		out = append(out, concept)
	}
	return out
}
