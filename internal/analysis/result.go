package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelsense/internal/audio"
	"reelsense/internal/concepts"
	"reelsense/internal/fileutil"
	"reelsense/internal/sentiment"
	"reelsense/internal/services"
	"reelsense/internal/textutil"
)

// AudioInfo is the audio_info section.
type AudioInfo struct {
	FilePath         string  `json:"file_path"`
	DurationSeconds  float64 `json:"duration_seconds"`
	SampleRate       int     `json:"sample_rate"`
	AverageRMS       float64 `json:"average_rms"`
	AveragePitchHz   float64 `json:"average_pitch_hz"`
	TempoBPM         float64 `json:"tempo_bpm"`
	SpectralCentroid float64 `json:"spectral_centroid"`
}

// Metadata is the analysis_metadata section.
type Metadata struct {
	RunID                 string    `json:"run_id"`
	Transcriber           string    `json:"transcriber"`
	ModelUsed             string    `json:"model_used"`
	Language              string    `json:"language"`
	PreprocessingApplied  bool      `json:"preprocessing_applied"`
	PostProcessingApplied bool      `json:"post_processing_applied"`
	TranscriptionCached   bool      `json:"transcription_cached"`
	TikTokGeneration      bool      `json:"tiktok_generation"`
	ConceptsGenerated     int       `json:"concepts_generated"`
	ConceptModel          string    `json:"concept_model,omitempty"`
	StartedAt             time.Time `json:"started_at"`
	FinishedAt            time.Time `json:"finished_at"`
}

// Elapsed returns the run's wall time.
func (m Metadata) Elapsed() time.Duration {
	return m.FinishedAt.Sub(m.StartedAt)
}

// Result is the integrated analysis document.
type Result struct {
	AudioInfo         AudioInfo          `json:"audio_info"`
	Transcription     string             `json:"transcription"`
	SentimentAnalysis sentiment.Result   `json:"sentiment_analysis"`
	TikTokConcepts    []concepts.Concept `json:"tiktok_concepts,omitempty"`
	Metadata          Metadata           `json:"analysis_metadata"`
}

// ConceptInput extracts what the concept prompt needs from r.
func (r *Result) ConceptInput() concepts.Input {
	return concepts.Input{
		Transcription:   r.Transcription,
		Sentiment:       r.SentimentAnalysis.Sentiment,
		Emotions:        r.SentimentAnalysis.Emotions,
		Themes:          r.SentimentAnalysis.Themes,
		TempoBPM:        r.AudioInfo.TempoBPM,
		DurationSeconds: r.AudioInfo.DurationSeconds,
	}
}

func newAudioInfo(path string, sig audio.Signal, f audio.Features) AudioInfo {
	return AudioInfo{
		FilePath:         path,
		DurationSeconds:  round(sig.Duration(), 2),
		SampleRate:       sig.SampleRate,
		AverageRMS:       round(f.AverageRMS, 4),
		AveragePitchHz:   round(f.AveragePitchHz, 1),
		TempoBPM:         round(f.TempoBPM, 1),
		SpectralCentroid: round(f.SpectralCentroid, 1),
	}
}

func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// DefaultOutputPath returns <outputDir>/integrated_analysis_<stem>.json.
func DefaultOutputPath(outputDir, audioPath string) string {
	base := filepath.Base(audioPath)
	stem := textutil.SanitizeFileName(strings.TrimSuffix(base, filepath.Ext(base)))
	return filepath.Join(outputDir, "integrated_analysis_"+stem+".json")
}

// Encode renders r as two-space indented JSON without HTML escaping.
func Encode(r *Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes r to path atomically, creating the parent directory.
func Save(r *Result, path string) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}
	return nil
}

// ReadResult loads a previously saved analysis document.
func ReadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "concepts", "read analysis", fmt.Sprintf("%q does not exist", path), nil)
		}
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, services.Wrap(services.ErrValidation, "concepts", "parse analysis", path, err)
	}
	if strings.TrimSpace(result.Transcription) == "" && result.SentimentAnalysis.Sentiment == "" {
		return nil, services.Wrap(services.ErrValidation, "concepts", "parse analysis",
			fmt.Sprintf("%q has no transcription or sentiment", path), nil)
	}
	return &result, nil
}
