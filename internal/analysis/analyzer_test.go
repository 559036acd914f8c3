package analysis_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"reelsense/internal/analysis"
	"reelsense/internal/config"
	"reelsense/internal/history"
	"reelsense/internal/services"
	"reelsense/internal/services/llm"
	"reelsense/internal/testsupport"
	"reelsense/internal/transcribe"
)

const lyrics = "I love you so much, dancing under the moonlight. My heart is on fire tonight and I feel free."

type fakeTranscriber struct {
	calls atomic.Int32
	text  string
	err   error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	f.calls.Add(1)
	if _, err := os.Stat(audioPath); err != nil {
		return "", err
	}
	return f.text, f.err
}

func (f *fakeTranscriber) Name() string  { return "fake" }
func (f *fakeTranscriber) Model() string { return "fake-small" }

func factoryFor(t *fakeTranscriber) analysis.TranscriberFactory {
	return func(*config.Config, string, *slog.Logger) (transcribe.Transcriber, error) {
		return t, nil
	}
}

func writeSong(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()
	path := filepath.Join(testsupport.BaseDir(cfg), "music", name)
	testsupport.WriteToneWAV(t, path, 440, 4, 22050, 0.5)
	return path
}

func TestAnalyzeProducesDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	song := writeSong(t, cfg, "sunrise.wav")
	fake := &fakeTranscriber{text: lyrics}
	analyzer := analysis.NewAnalyzer(cfg, nil, analysis.WithTranscriberFactory(factoryFor(fake)))

	result, err := analyzer.Analyze(context.Background(), song, analysis.Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	info := result.AudioInfo
	if info.FilePath != song || info.SampleRate != 22050 {
		t.Fatalf("unexpected audio info %+v", info)
	}
	if info.DurationSeconds != 4 {
		t.Fatalf("expected 4s duration, got %v", info.DurationSeconds)
	}
	if info.TempoBPM <= 0 {
		t.Fatalf("expected positive tempo, got %v", info.TempoBPM)
	}
	if info.AverageRMS <= 0 || info.SpectralCentroid <= 0 {
		t.Fatalf("expected non-zero rms and centroid, got %+v", info)
	}

	sa := result.SentimentAnalysis
	if sa.Polarity < -1 || sa.Polarity > 1 || sa.Subjectivity < 0 || sa.Subjectivity > 1 {
		t.Fatalf("sentiment out of range %+v", sa)
	}
	if sa.Emotions["love"] == 0 || sa.Themes["nature"] == 0 {
		t.Fatalf("expected love emotion and nature theme, got %v %v", sa.Emotions, sa.Themes)
	}
	if result.Transcription == "" {
		t.Fatal("expected transcription text")
	}

	meta := result.Metadata
	if meta.RunID == "" || meta.Transcriber != "fake" || meta.ModelUsed != "fake-small" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if !meta.PreprocessingApplied || !meta.PostProcessingApplied {
		t.Fatalf("expected preprocessing and post-processing, got %+v", meta)
	}
	if meta.TikTokGeneration || meta.ConceptsGenerated != 0 || result.TikTokConcepts != nil {
		t.Fatal("expected concepts to be skipped without an API key")
	}
	if meta.FinishedAt.Before(meta.StartedAt) {
		t.Fatal("finished_at precedes started_at")
	}

	entries, err := os.ReadDir(cfg.Paths.CacheDir)
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".wav" {
			t.Fatalf("preprocessed wav left behind: %s", e.Name())
		}
	}

	out, err := analyzer.Save(context.Background(), result, "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if out != filepath.Join(cfg.Paths.OutputDir, "integrated_analysis_sunrise.json") {
		t.Fatalf("unexpected output path %q", out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	for _, key := range []string{"audio_info", "transcription", "sentiment_analysis", "analysis_metadata"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("output missing %q", key)
		}
	}
	if _, ok := doc["tiktok_concepts"]; ok {
		t.Fatal("tiktok_concepts should be omitted when concepts did not run")
	}

	reloaded, err := analysis.ReadResult(out)
	if err != nil {
		t.Fatalf("ReadResult: %v", err)
	}
	if reloaded.SentimentAnalysis.Sentiment != sa.Sentiment || reloaded.AudioInfo.TempoBPM != info.TempoBPM {
		t.Fatalf("reloaded result differs: %+v", reloaded)
	}
}

func TestAnalyzeMissingFileFailsAndIsRecorded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	fake := &fakeTranscriber{text: lyrics}
	analyzer := analysis.NewAnalyzer(cfg, nil, analysis.WithTranscriberFactory(factoryFor(fake)), analysis.WithHistory(store))

	missing := filepath.Join(testsupport.BaseDir(cfg), "nope.wav")
	_, err := analyzer.Analyze(context.Background(), missing, analysis.Options{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if services.ExitCode(err) == 0 {
		t.Fatal("expected non-zero exit code")
	}
	if fake.calls.Load() != 0 {
		t.Fatal("transcriber should not run for a missing file")
	}

	runs, err := store.ListRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusFailed || runs[0].AudioPath != missing {
		t.Fatalf("expected one failed run, got %+v", runs)
	}
}

func TestAnalyzeTranscriptionErrorPropagates(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	song := writeSong(t, cfg, "broken.wav")
	boom := services.Wrap(services.ErrExternalTool, "whisperx", "run", "exit 1", nil)
	analyzer := analysis.NewAnalyzer(cfg, nil, analysis.WithTranscriberFactory(factoryFor(&fakeTranscriber{err: boom})))

	if _, err := analyzer.Analyze(context.Background(), song, analysis.Options{}); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestAnalyzeUsesTranscriptionCache(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	song := writeSong(t, cfg, "again.wav")
	fake := &fakeTranscriber{text: lyrics}
	analyzer := analysis.NewAnalyzer(cfg, nil, analysis.WithTranscriberFactory(factoryFor(fake)), analysis.WithHistory(store))
	ctx := context.Background()

	first, err := analyzer.Analyze(ctx, song, analysis.Options{})
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	if _, err := analyzer.Save(ctx, first, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := analyzer.Analyze(ctx, song, analysis.Options{})
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}

	if fake.calls.Load() != 1 {
		t.Fatalf("expected one transcription, got %d", fake.calls.Load())
	}
	if first.Metadata.TranscriptionCached || !second.Metadata.TranscriptionCached {
		t.Fatalf("unexpected cache flags first=%v second=%v", first.Metadata.TranscriptionCached, second.Metadata.TranscriptionCached)
	}
	if second.Transcription != first.Transcription {
		t.Fatalf("cached transcription differs: %q vs %q", second.Transcription, first.Transcription)
	}
	if first.Metadata.RunID == second.Metadata.RunID {
		t.Fatal("expected distinct run ids")
	}

	run, err := store.GetRun(ctx, first.Metadata.RunID)
	if err != nil || run == nil {
		t.Fatalf("expected recorded run, got %+v err=%v", run, err)
	}
	if run.Status != history.StatusCompleted || run.AudioSHA256 == "" || run.Sentiment != first.SentimentAnalysis.Sentiment {
		t.Fatalf("unexpected recorded run %+v", run)
	}

	third, err := analyzer.Analyze(ctx, song, analysis.Options{Language: "es"})
	if err != nil {
		t.Fatalf("third Analyze: %v", err)
	}
	if third.Metadata.TranscriptionCached || fake.calls.Load() != 2 {
		t.Fatal("a different language must miss the cache")
	}
}

func TestAnalyzeGeneratesConcepts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		content := `{"concept_title":"Moonlight dance number ` + string(rune('0'+n)) + `","hashtags":["moon"]}`
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory(), testsupport.WithLLM("router-key", server.URL))
	song := writeSong(t, cfg, "moon.wav")
	analyzer := analysis.NewAnalyzer(cfg, nil,
		analysis.WithTranscriberFactory(factoryFor(&fakeTranscriber{text: lyrics})),
		analysis.WithLLMOptions(llm.WithRetryMaxAttempts(1)),
	)

	result, err := analyzer.Analyze(context.Background(), song, analysis.Options{ConceptCount: 2})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.TikTokConcepts) != 2 || calls.Load() != 2 {
		t.Fatalf("expected 2 concepts from 2 calls, got %d/%d", len(result.TikTokConcepts), calls.Load())
	}
	if !result.Metadata.TikTokGeneration || result.Metadata.ConceptsGenerated != 2 {
		t.Fatalf("unexpected metadata %+v", result.Metadata)
	}
	if result.TikTokConcepts[1]["concept_number"] != 2 {
		t.Fatalf("unexpected concept numbering %v", result.TikTokConcepts[1]["concept_number"])
	}

	skipped, err := analyzer.Analyze(context.Background(), song, analysis.Options{SkipConcepts: true})
	if err != nil {
		t.Fatalf("Analyze skip: %v", err)
	}
	if skipped.TikTokConcepts != nil || calls.Load() != 2 {
		t.Fatal("SkipConcepts should not call the model")
	}
}

func TestAnalyzeRejectsUnknownBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	song := writeSong(t, cfg, "any.wav")
	analyzer := analysis.NewAnalyzer(cfg, nil)

	_, err := analyzer.Analyze(context.Background(), song, analysis.Options{Backend: "vosk"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := analyzer.Analyze(context.Background(), song, analysis.Options{ModelSize: "tiny"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for model size, got %v", err)
	}
}

func TestGenerateConceptsRequiresKey(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	analyzer := analysis.NewAnalyzer(cfg, nil)
	_, err := analyzer.GenerateConcepts(context.Background(), &analysis.Result{Transcription: lyrics}, analysis.Options{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestReadResultErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := analysis.ReadResult(filepath.Join(dir, "missing.json")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	testsupport.WriteFile(t, bad, 16)
	if _, err := analysis.ReadResult(bad); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for garbage, got %v", err)
	}
	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`{"audio_info":{}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := analysis.ReadResult(empty); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty document, got %v", err)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	got := analysis.DefaultOutputPath("/out", "/music/My Song.final.mp3")
	if got != filepath.Join("/out", "integrated_analysis_My Song.final.json") {
		t.Fatalf("unexpected path %q", got)
	}
	got = analysis.DefaultOutputPath("/out", "/music/AC:DC?.wav")
	if got != filepath.Join("/out", "integrated_analysis_AC-DC.json") {
		t.Fatalf("expected unsafe characters replaced, got %q", got)
	}
}
