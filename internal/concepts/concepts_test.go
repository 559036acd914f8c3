package concepts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"reelsense/internal/services/llm"
)

var fixedNow = time.Date(2024, 5, 17, 9, 30, 15, 0, time.UTC)

func sampleInput() Input {
	return Input{
		Transcription:   strings.Repeat("dance with me under the stars ", 20),
		Sentiment:       "Positive",
		Emotions:        map[string]int{"love": 2, "energy": 1},
		Themes:          map[string]int{"nature": 1},
		TempoBPM:        123.4,
		DurationSeconds: 31.25,
	}
}

func chatServer(t *testing.T, contents ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idx := int(calls.Add(1)) - 1
		content := contents[len(contents)-1]
		if idx < len(contents) {
			content = contents[idx]
		}
		payload := map[string]any{"choices": []any{map[string]any{"message": map[string]any{"content": content}}}}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newTestGenerator(t *testing.T, baseURL string, logger *slog.Logger) *Generator {
	t.Helper()
	gen, err := NewGenerator(llm.Config{APIKey: "test", BaseURL: baseURL, Model: "demo/model"}, logger, llm.WithRetryMaxAttempts(1))
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	gen.now = func() time.Time { return fixedNow }
	return gen
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(llm.Config{APIKey: "  "}, nil); !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGenerateParsesWrappedJSON(t *testing.T) {
	server, _ := chatServer(t, "Sure! Here you go:\n{\"concept_title\":\"Starlight Steps\",\"hashtags\":[\"dance\",\"stars\"]}\nEnjoy.")
	gen := newTestGenerator(t, server.URL, nil)

	concept := gen.Generate(context.Background(), sampleInput())
	if concept.Title() != "Starlight Steps" {
		t.Fatalf("unexpected title %q", concept.Title())
	}
	if concept.Model() != "demo/model" {
		t.Fatalf("unexpected model_used %q", concept.Model())
	}
	if concept.IsFallback() {
		t.Fatal("did not expect fallback")
	}
	if got := concept.Hashtags(); len(got) != 2 || got[0] != "dance" {
		t.Fatalf("unexpected hashtags %v", got)
	}
	if concept["generated_at"] != fixedNow.Format(time.RFC3339Nano) {
		t.Fatalf("unexpected generated_at %v", concept["generated_at"])
	}
	summary, ok := concept["music_analysis_summary"].(Summary)
	if !ok {
		t.Fatalf("expected summary, got %T", concept["music_analysis_summary"])
	}
	if summary.Tempo != 123.4 || summary.Duration != 31.25 || summary.Sentiment != "Positive" || summary.Emotions["love"] != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestGenerateFallsBackOnBadContent(t *testing.T) {
	server, _ := chatServer(t, "I cannot produce JSON today.")
	gen := newTestGenerator(t, server.URL, nil)

	concept := gen.Generate(context.Background(), sampleInput())
	if !concept.IsFallback() {
		t.Fatalf("expected fallback, got model %q", concept.Model())
	}
	if concept.Title() == "" {
		t.Fatal("fallback should carry a title")
	}
	tags := concept.Hashtags()
	if len(tags) != 5 || tags[0] != "music" {
		t.Fatalf("unexpected fallback hashtags %v", tags)
	}
}

func TestGenerateFallsBackOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()
	gen := newTestGenerator(t, server.URL, nil)

	if concept := gen.Generate(context.Background(), sampleInput()); !concept.IsFallback() {
		t.Fatal("expected fallback on HTTP error")
	}
}

func TestGenerateManyNumbersConcepts(t *testing.T) {
	server, calls := chatServer(t,
		`{"concept_title":"Neon rooftop dance at midnight","viral_hook":"Wait for the drop"}`,
		"no json here",
		`{"concept_title":"Forest walk with handwritten lyrics","viral_hook":"Read along"}`,
	)
	gen := newTestGenerator(t, server.URL, nil)

	got := gen.GenerateMany(context.Background(), sampleInput(), 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 concepts, got %d", len(got))
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 requests, got %d", calls.Load())
	}
	for i, c := range got {
		if c["concept_number"] != i+1 {
			t.Fatalf("concept %d has number %v", i, c["concept_number"])
		}
		if want := "Style " + string(rune('1'+i)); c["variation_style"] != want {
			t.Fatalf("concept %d has style %v", i, c["variation_style"])
		}
	}
	if !got[1].IsFallback() || got[0].IsFallback() || got[2].IsFallback() {
		t.Fatal("expected only the second concept to be a fallback")
	}
}

func TestGenerateManyWarnsOnNearDuplicates(t *testing.T) {
	server, _ := chatServer(t, `{"concept_title":"Neon rooftop dance at midnight","viral_hook":"Wait for the drop"}`)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	gen := newTestGenerator(t, server.URL, logger)

	_ = gen.GenerateMany(context.Background(), sampleInput(), 2)
	if !strings.Contains(buf.String(), "concept_near_duplicate") {
		t.Fatalf("expected near-duplicate warning, got logs:\n%s", buf.String())
	}
}

func TestGenerateManyStopsWhenCancelled(t *testing.T) {
	server, calls := chatServer(t, `{"concept_title":"x"}`)
	gen := newTestGenerator(t, server.URL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := gen.GenerateMany(ctx, sampleInput(), 3); len(got) != 0 {
		t.Fatalf("expected no concepts after cancel, got %d", len(got))
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no requests, got %d", calls.Load())
	}
}

func TestBuildUserPromptTruncatesTranscript(t *testing.T) {
	prompt := buildUserPrompt(sampleInput())
	if !strings.Contains(prompt, "...") {
		t.Fatal("expected truncated transcript marker")
	}
	if !strings.Contains(prompt, "love: 2, energy: 1") {
		t.Fatalf("expected ordered emotion counts in prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "123.4 BPM") || !strings.Contains(prompt, "31.2 seconds") && !strings.Contains(prompt, "31.3 seconds") {
		t.Fatalf("expected tempo and duration in prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"concept_title"`) {
		t.Fatal("expected JSON template in prompt")
	}

	short := buildUserPrompt(Input{Transcription: "hi"})
	if strings.Contains(short, "hi...") || !strings.Contains(short, "Sentiment: Unknown") || !strings.Contains(short, "Emotions: none") {
		t.Fatalf("unexpected prompt for sparse input:\n%s", short)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, true},
		{"wrapped", "text {\"a\":{\"b\":2}} tail", `{"a":{"b":2}}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"none", "no braces", "", false},
		{"reversed", "} {", "", false},
		{"invalid", "{not json}", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSON(tc.content)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ExtractJSON(%q) = %q, %v; want %q, %v", tc.content, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestSaveAndDefaultPath(t *testing.T) {
	dir := t.TempDir()
	path := DefaultPath(filepath.Join(dir, "outputs"), fixedNow)
	if filepath.Base(path) != "tiktok_concepts_20240517_093015.json" {
		t.Fatalf("unexpected default path %q", path)
	}
	concepts := []Concept{Fallback(Input{Sentiment: "Très Positif"}, fixedNow)}
	if err := Save(concepts, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved concepts: %v", err)
	}
	if !strings.Contains(string(data), "Très Positif") {
		t.Fatal("expected non-ASCII text preserved")
	}
	if !strings.Contains(string(data), "\n  {") {
		t.Fatal("expected two-space indentation")
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode saved concepts: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["model_used"] != FallbackModel {
		t.Fatalf("unexpected saved payload %v", decoded)
	}
}
