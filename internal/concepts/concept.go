package concepts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Concept is a model-generated reel concept. Fields are free-form; the
// generator adds generated_at, model_used, music_analysis_summary and, for
// batches, concept_number and variation_style.
type Concept map[string]any

// FallbackModel is recorded as model_used on fallback concepts.
const FallbackModel = "fallback"

// Input is the slice of an analysis the prompt needs.
type Input struct {
	Transcription   string
	Sentiment       string
	Emotions        map[string]int
	Themes          map[string]int
	TempoBPM        float64
	DurationSeconds float64
}

// Summary is stamped onto every concept as music_analysis_summary.
type Summary struct {
	Duration  float64        `json:"duration"`
	Tempo     float64        `json:"tempo"`
	Sentiment string         `json:"sentiment"`
	Emotions  map[string]int `json:"emotions"`
}

func (in Input) summary() Summary {
	sentiment := in.Sentiment
	if sentiment == "" {
		sentiment = "Unknown"
	}
	emotions := in.Emotions
	if emotions == nil {
		emotions = map[string]int{}
	}
	return Summary{Duration: in.DurationSeconds, Tempo: in.TempoBPM, Sentiment: sentiment, Emotions: emotions}
}

// Title returns concept_title when present.
func (c Concept) Title() string {
	if v, ok := c["concept_title"].(string); ok {
		return v
	}
	return ""
}

// Model returns model_used when present.
func (c Concept) Model() string {
	if v, ok := c["model_used"].(string); ok {
		return v
	}
	return ""
}

// IsFallback reports whether the concept came from the built-in template.
func (c Concept) IsFallback() bool {
	return c.Model() == FallbackModel
}

// Hashtags returns the hashtags list as strings.
func (c Concept) Hashtags() []string {
	raw, ok := c["hashtags"].([]any)
	if !ok {
		if typed, ok := c["hashtags"].([]string); ok {
			return typed
		}
		return nil
	}
	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// Text flattens every string value in the concept, keys sorted, for
// similarity comparisons between concepts.
func (c Concept) Text() string {
	var b strings.Builder
	flattenText(&b, map[string]any(c))
	return b.String()
}

func flattenText(b *strings.Builder, v any) {
	switch t := v.(type) {
	case string:
		b.WriteString(t)
		b.WriteByte(' ')
	case []any:
		for _, item := range t {
			flattenText(b, item)
		}
	case []string:
		for _, item := range t {
			flattenText(b, item)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			switch k {
			case "generated_at", "model_used", "variation_style", "music_analysis_summary":
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenText(b, t[k])
		}
	case Concept:
		flattenText(b, map[string]any(t))
	}
}

func (c Concept) stamp(in Input, model string, now time.Time) {
	c["generated_at"] = now.Format(time.RFC3339Nano)
	c["model_used"] = model
	c["music_analysis_summary"] = in.summary()
}

// Fallback returns the built-in concept used when generation fails.
func Fallback(in Input, now time.Time) Concept {
	c := Concept{
		"concept_title": "Automatic Music Reel",
		"viral_hook":    "Discover the power of this track!",
		"story_structure": map[string]any{
			"intro":       "Show the song title (0-3s)",
			"hook_moment": "Ask a rhetorical question about the music (3-6s)",
			"development": "Show a key lyric from the song (6-15s)",
			"climax":      "Striking visual effect (15-20s)",
			"closing":     "Call to action to follow (20-30s)",
		},
		"visual_elements":  []any{"Animated lyric text", "Particle effects", "Smooth transitions"},
		"transitions":      []any{"Fade in at the start", "Slide transition in the middle", "Zoom out at the end"},
		"effects":          []any{"Glitch effect on key moments", "Color grading matched to the sentiment"},
		"hashtags":         []any{"music", "viral", "trending", "fyp", "musicanalysis"},
		"target_audience":  "Music lovers on TikTok",
		"viral_potential":  "Authentic, engaging music content",
		"music_sync_tips":  []any{"Sync transitions to the beat", "Save effects for high-energy moments"},
	}
	c.stamp(in, FallbackModel, now)
	return c
}

// ExtractJSON returns the text from the first '{' to the last '}' when it
// parses as a JSON object.
func ExtractJSON(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	candidate := content[start : end+1]
	var probe map[string]any
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return "", false
	}
	return candidate, true
}

func parseConcept(content string) (Concept, error) {
	payload, ok := ExtractJSON(content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in model response")
	}
	var c Concept
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, fmt.Errorf("decode concept: %w", err)
	}
	return c, nil
}
