package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelsense/internal/audio"
	"reelsense/internal/concepts"
	"reelsense/internal/config"
	"reelsense/internal/fileutil"
	"reelsense/internal/history"
	"reelsense/internal/logging"
	"reelsense/internal/sentiment"
	"reelsense/internal/services"
	"reelsense/internal/services/llm"
	"reelsense/internal/transcribe"
)

// Options adjust a single Analyze call. Zero values defer to the config.
type Options struct {
	ModelSize    string
	Language     string
	Backend      string
	ConceptCount int
	SkipConcepts bool
	// APIKey overrides llm.api_key for this run.
	APIKey string
}

// TranscriberFactory builds the transcriber for a run.
type TranscriberFactory func(cfg *config.Config, modelSize string, logger *slog.Logger) (transcribe.Transcriber, error)

// Analyzer runs the analysis pipeline.
type Analyzer struct {
	cfg            *config.Config
	logger         *slog.Logger
	newTranscriber TranscriberFactory
	history        *history.Store
	llmOptions     []llm.Option
	now            func() time.Time
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithTranscriberFactory replaces backend construction.
func WithTranscriberFactory(factory TranscriberFactory) Option {
	return func(a *Analyzer) {
		if factory != nil {
			a.newTranscriber = factory
		}
	}
}

// WithHistory enables the transcription cache and run recording.
func WithHistory(store *history.Store) Option {
	return func(a *Analyzer) {
		a.history = store
	}
}

// WithLLMOptions passes options through to the concept generator's client.
func WithLLMOptions(opts ...llm.Option) Option {
	return func(a *Analyzer) {
		a.llmOptions = append(a.llmOptions, opts...)
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAnalyzer builds an Analyzer for cfg.
func NewAnalyzer(cfg *config.Config, logger *slog.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		cfg:            cfg,
		logger:         logging.NewComponentLogger(logger, "analysis"),
		newTranscriber: transcribe.New,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the pipeline for path. Failed runs are recorded in history
// when a store is attached.
func (a *Analyzer) Analyze(ctx context.Context, path string, opts Options) (*Result, error) {
	if a.cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "analysis", "init", "config required", nil)
	}
	cfg := a.runConfig(opts)
	runID := uuid.NewString()
	ctx = services.WithRequestID(ctx, runID)
	started := a.now()

	result, sha, err := a.analyze(ctx, cfg, path, runID, started, opts)
	if err != nil {
		a.recordFailure(ctx, cfg, runID, path, sha, started, err)
		return nil, err
	}
	return result, nil
}

func (a *Analyzer) analyze(ctx context.Context, cfg config.Config, path, runID string, started time.Time, opts Options) (*Result, string, error) {
	logger := logging.WithContext(ctx, a.logger)
	logger.Info("analysis started", logging.String("audio_file", path), logging.String(logging.FieldRunID, runID))

	loadCtx := services.WithStage(ctx, "load")
	sig, err := audio.Load(loadCtx, path, audio.LoadOptions{
		FFmpegBinary:  cfg.FFmpegBinary(),
		FFprobeBinary: cfg.FFprobeBinary(),
		TempDir:       cfg.Paths.CacheDir,
		Logger:        logging.WithContext(loadCtx, a.logger),
	})
	if err != nil {
		return nil, "", err
	}
	logger.Info("audio loaded",
		logging.Int("sample_rate", sig.SampleRate),
		logging.Float64("duration_seconds", sig.Duration()),
	)

	transcriber, err := a.newTranscriber(&cfg, opts.ModelSize, logger)
	if err != nil {
		return nil, "", err
	}

	result := &Result{
		Metadata: Metadata{
			RunID:       runID,
			Transcriber: transcriber.Name(),
			ModelUsed:   transcriber.Model(),
			Language:    cfg.Transcription.Language,
			StartedAt:   started,
		},
	}

	trCtx := services.WithStage(ctx, "transcribe")
	sha, err := a.transcribe(trCtx, cfg, transcriber, path, sig, result)
	if err != nil {
		return nil, sha, err
	}

	analyzer := sentiment.NewAnalyzer(sentiment.Thresholds{
		VeryPositive: cfg.Sentiment.VeryPositive,
		Positive:     cfg.Sentiment.Positive,
		Negative:     cfg.Sentiment.Negative,
		VeryNegative: cfg.Sentiment.VeryNegative,
	})
	result.SentimentAnalysis = analyzer.Analyze(result.Transcription)

	features := audio.ExtractFeatures(sig, audio.FeatureOptions{
		FrameLength: cfg.Audio.FrameLength,
		HopLength:   cfg.Audio.HopLength,
	})
	result.AudioInfo = newAudioInfo(path, sig, features)
	logger.Info("features extracted",
		logging.Float64("tempo_bpm", result.AudioInfo.TempoBPM),
		logging.Float64("average_pitch_hz", result.AudioInfo.AveragePitchHz),
		logging.String("sentiment", result.SentimentAnalysis.Sentiment),
	)

	if cfg.Concepts.Enabled && !opts.SkipConcepts {
		a.generateConcepts(services.WithStage(ctx, "concepts"), cfg, result)
	}

	result.Metadata.FinishedAt = a.now()
	logger.Info("analysis complete",
		logging.Int("concepts_generated", result.Metadata.ConceptsGenerated),
		logging.Duration("stage_duration", result.Metadata.Elapsed()),
	)
	return result, sha, nil
}

// runConfig applies per-run overrides to a copy of the config.
func (a *Analyzer) runConfig(opts Options) config.Config {
	cfg := *a.cfg
	if backend := strings.ToLower(strings.TrimSpace(opts.Backend)); backend != "" {
		cfg.Transcription.Backend = backend
	}
	if lang := strings.ToLower(strings.TrimSpace(opts.Language)); lang != "" {
		cfg.Transcription.Language = lang
	}
	if cfg.Transcription.Language == "" {
		cfg.Transcription.Language = "en"
	}
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		cfg.LLM.APIKey = key
	}
	if opts.ConceptCount > 0 {
		cfg.Concepts.Count = opts.ConceptCount
	}
	return cfg
}

func (a *Analyzer) transcribe(ctx context.Context, cfg config.Config, t transcribe.Transcriber, path string, sig audio.Signal, result *Result) (string, error) {
	logger := logging.WithContext(ctx, a.logger)
	var (
		sha string
		key history.TranscriptionKey
	)
	if a.history != nil {
		digest, err := fileutil.SHA256File(path)
		if err != nil {
			logging.WarnWithContext(logger, "audio hash failed; transcription cache bypassed", "cache_hash_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "transcription will not be cached"),
			)
		} else {
			sha = digest
			key = history.TranscriptionKey{AudioSHA256: sha, Backend: t.Name(), Model: t.Model(), Language: cfg.Transcription.Language}
			raw, ok, err := a.history.CachedTranscription(ctx, key)
			if err != nil {
				logging.WarnWithContext(logger, "transcription cache read failed", "cache_read_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "audio will be transcribed again"),
				)
			} else if ok {
				result.Transcription = raw
				if cfg.Transcription.PostProcess {
					result.Transcription = transcribe.PostProcess(raw)
					result.Metadata.PostProcessingApplied = true
				}
				result.Metadata.TranscriptionCached = true
				logger.Info("transcription cache hit", logging.String("audio_sha256", sha))
				return sha, nil
			}
		}
	}

	tr, err := transcribe.Run(ctx, t, path, sig, transcribe.Options{
		Language:    cfg.Transcription.Language,
		Preprocess:  cfg.Transcription.Preprocess,
		PostProcess: cfg.Transcription.PostProcess,
		Preprocessing: transcribe.PreprocessOptions{
			NoiseCutoff: cfg.Audio.NoiseCutoff,
			VocalLowHz:  cfg.Audio.VocalFreqLow,
			VocalHighHz: cfg.Audio.VocalFreqHigh,
			VocalMix:    cfg.Audio.VocalMix,
		},
		TempDir: cfg.Paths.CacheDir,
	}, logger)
	if err != nil {
		return sha, fmt.Errorf("transcribe %s: %w", path, err)
	}
	result.Transcription = tr.Text
	result.Metadata.PreprocessingApplied = tr.Preprocessed
	result.Metadata.PostProcessingApplied = tr.PostProcessed

	if a.history != nil && sha != "" {
		if err := a.history.StoreTranscription(ctx, key, tr.Raw); err != nil {
			logging.WarnWithContext(logger, "transcription cache write failed", "cache_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "next run will transcribe again"),
			)
		}
	}
	return sha, nil
}

func (a *Analyzer) generateConcepts(ctx context.Context, cfg config.Config, result *Result) {
	logger := logging.WithContext(ctx, a.logger)
	gen, err := concepts.NewGenerator(llmConfig(cfg), logger, a.llmOptions...)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			logger.Info("reel concepts skipped; no OpenRouter API key configured",
				logging.String(logging.FieldErrorHint, "set OPENROUTER_API_KEY or llm.api_key"),
			)
			return
		}
		logging.WarnWithContext(logger, "concept generator unavailable", "concepts_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "reel concepts skipped"),
		)
		return
	}
	generated := gen.GenerateMany(ctx, result.ConceptInput(), cfg.Concepts.Count)
	result.TikTokConcepts = generated
	result.Metadata.TikTokGeneration = len(generated) > 0
	result.Metadata.ConceptsGenerated = len(generated)
	result.Metadata.ConceptModel = gen.Model()
}

// GenerateConcepts produces concepts for an existing analysis, for the
// standalone concepts command.
func (a *Analyzer) GenerateConcepts(ctx context.Context, result *Result, opts Options) ([]concepts.Concept, error) {
	if a.cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "concepts", "init", "config required", nil)
	}
	cfg := a.runConfig(opts)
	ctx = services.WithStage(ctx, "concepts")
	gen, err := concepts.NewGenerator(llmConfig(cfg), logging.WithContext(ctx, a.logger), a.llmOptions...)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return nil, services.Wrap(services.ErrConfiguration, "concepts", "init",
				"OpenRouter API key required (set OPENROUTER_API_KEY or llm.api_key)", nil)
		}
		return nil, err
	}
	return gen.GenerateMany(ctx, result.ConceptInput(), cfg.Concepts.Count), nil
}

// Save writes result to path (DefaultOutputPath when empty) and records the
// completed run in history. It returns the path written.
func (a *Analyzer) Save(ctx context.Context, result *Result, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultOutputPath(a.cfg.Paths.OutputDir, result.AudioInfo.FilePath)
	}
	if err := Save(result, path); err != nil {
		return "", err
	}
	if a.history != nil {
		sha, _ := fileutil.SHA256File(result.AudioInfo.FilePath)
		run := history.Run{
			ID:                result.Metadata.RunID,
			AudioPath:         result.AudioInfo.FilePath,
			AudioSHA256:       sha,
			Transcriber:       result.Metadata.Transcriber,
			Model:             result.Metadata.ModelUsed,
			Language:          result.Metadata.Language,
			Status:            history.StatusCompleted,
			Sentiment:         result.SentimentAnalysis.Sentiment,
			Polarity:          result.SentimentAnalysis.Polarity,
			TempoBPM:          result.AudioInfo.TempoBPM,
			DurationSeconds:   result.AudioInfo.DurationSeconds,
			ConceptsGenerated: result.Metadata.ConceptsGenerated,
			OutputPath:        path,
			StartedAt:         result.Metadata.StartedAt,
			FinishedAt:        result.Metadata.FinishedAt,
		}
		if err := a.history.RecordRun(ctx, run); err != nil {
			logging.WarnWithContext(a.logger, "run history write failed", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run missing from history"),
			)
		}
	}
	return path, nil
}

func (a *Analyzer) recordFailure(ctx context.Context, cfg config.Config, runID, path, sha string, started time.Time, cause error) {
	if a.history == nil || strings.TrimSpace(path) == "" {
		return
	}
	run := history.Run{
		ID:           runID,
		AudioPath:    path,
		AudioSHA256:  sha,
		Transcriber:  cfg.Transcription.Backend,
		Language:     cfg.Transcription.Language,
		Status:       history.StatusFailed,
		ErrorMessage: cause.Error(),
		StartedAt:    started,
		FinishedAt:   a.now(),
	}
	// The run context may already be cancelled.
	if err := a.history.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		a.logger.Debug("failed to record failed run", logging.Error(err))
	}
}

func llmConfig(cfg config.Config) llm.Config {
	c := cfg.GetLLM()
	return llm.Config{
		APIKey:         c.APIKey,
		BaseURL:        c.BaseURL,
		Model:          c.Model,
		Referer:        c.Referer,
		Title:          c.Title,
		TimeoutSeconds: c.TimeoutSeconds,
		Temperature:    c.Temperature,
		MaxTokens:      c.MaxTokens,
	}
}
