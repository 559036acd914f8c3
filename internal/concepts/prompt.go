package concepts

import (
	"fmt"
	"sort"
	"strings"
)

const transcriptExcerptRunes = 200

const systemPrompt = `You are an expert short-form video creator who specialises in viral music reels.
Always respond ONLY with a valid JSON object, starting with { and ending with }.
Do not include any text before or after the JSON.`

const conceptTemplate = `{
  "concept_title": "Catchy concept title",
  "viral_hook": "Opening line that grabs attention",
  "story_structure": {
    "intro": "What happens in the first 3 seconds",
    "hook_moment": "The key moment that hooks the viewer",
    "development": "How the story unfolds",
    "climax": "The emotional peak",
    "closing": "Call to action or memorable ending"
  },
  "visual_elements": ["element 1", "element 2", "element 3"],
  "transitions": ["transition 1", "transition 2", "transition 3"],
  "effects": ["effect 1", "effect 2"],
  "hashtags": ["tag1", "tag2", "tag3", "tag4", "tag5"],
  "target_audience": "Target audience description",
  "viral_potential": "Why this concept could go viral",
  "music_sync_tips": ["tip 1", "tip 2"]
}`

func buildUserPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("Analyze this song and create a viral short-form video concept.\n\n")
	b.WriteString("Song analysis:\n")
	fmt.Fprintf(&b, "- Transcript: %s\n", excerpt(in.Transcription))
	fmt.Fprintf(&b, "- Sentiment: %s\n", orUnknown(in.Sentiment))
	fmt.Fprintf(&b, "- Emotions: %s\n", formatCounts(in.Emotions))
	fmt.Fprintf(&b, "- Themes: %s\n", formatCounts(in.Themes))
	fmt.Fprintf(&b, "- Tempo: %.1f BPM\n", in.TempoBPM)
	fmt.Fprintf(&b, "- Duration: %.1f seconds\n\n", in.DurationSeconds)
	b.WriteString("Respond with a JSON object in exactly this shape:\n")
	b.WriteString(conceptTemplate)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- The video must be 30 seconds or shorter.\n")
	b.WriteString("- Make it engaging and likely to go viral.\n")
	b.WriteString("- Sync visual moments with the beat of the song.\n")
	return b.String()
}

func excerpt(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > transcriptExcerptRunes {
		return string(runes[:transcriptExcerptRunes]) + "..."
	}
	return text
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Unknown"
	}
	return value
}

// formatCounts renders counts as "key: n" pairs, highest count first.
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}
