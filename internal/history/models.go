package history

import "time"

// Status describes how a run ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one recorded analysis.
type Run struct {
	ID                string
	AudioPath         string
	AudioSHA256       string
	Transcriber       string
	Model             string
	Language          string
	Status            Status
	Sentiment         string
	Polarity          float64
	TempoBPM          float64
	DurationSeconds   float64
	ConceptsGenerated int
	OutputPath        string
	ErrorMessage      string
	StartedAt         time.Time
	FinishedAt        time.Time
}

// Elapsed returns the run's wall time, or 0 when it never finished.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// TranscriptionKey identifies a cached transcription.
type TranscriptionKey struct {
	AudioSHA256 string
	Backend     string
	Model       string
	Language    string
}

func (k TranscriptionKey) valid() bool {
	return k.AudioSHA256 != "" && k.Backend != "" && k.Model != "" && k.Language != ""
}
