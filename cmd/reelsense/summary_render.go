package main

import (
	"fmt"
	"sort"
	"strings"

	"reelsense/internal/analysis"
	"reelsense/internal/concepts"
)

const transcriptPreviewRunes = 200

func renderSummary(r *analysis.Result, colorize bool) string {
	var b strings.Builder

	writeLines(&b, renderSectionHeader("Audio", colorize))
	info := r.AudioInfo
	b.WriteString(renderTable(
		[]string{"Property", "Value"},
		[][]string{
			{"File", baseName(info.FilePath)},
			{"Duration", fmt.Sprintf("%.2f s", info.DurationSeconds)},
			{"Sample rate", fmt.Sprintf("%d Hz", info.SampleRate)},
			{"Tempo", fmt.Sprintf("%.1f BPM", info.TempoBPM)},
			{"Average pitch", fmt.Sprintf("%.1f Hz", info.AveragePitchHz)},
			{"Average RMS", fmt.Sprintf("%.4f", info.AverageRMS)},
			{"Spectral centroid", fmt.Sprintf("%.1f Hz", info.SpectralCentroid)},
		},
		nil,
	))
	b.WriteString("\n\n")

	writeLines(&b, renderSectionHeader("Transcription", colorize))
	meta := r.Metadata
	source := fmt.Sprintf("%s (%s)", meta.Transcriber, meta.ModelUsed)
	if meta.TranscriptionCached {
		source += ", cached"
	}
	b.WriteString(renderStatusLine("Transcriber", statusInfo, source, colorize) + "\n")
	b.WriteString(renderStatusLine("Preprocessing", statusInfo, yesNo(meta.PreprocessingApplied), colorize) + "\n")
	if strings.TrimSpace(r.Transcription) == "" {
		b.WriteString(renderStatusLine("Text", statusWarn, "no lyrics detected", colorize) + "\n\n")
	} else {
		b.WriteString(statusIndent + truncate(r.Transcription, transcriptPreviewRunes) + "\n\n")
	}

	writeLines(&b, renderSectionHeader("Sentiment", colorize))
	sa := r.SentimentAnalysis
	b.WriteString(renderStatusLine("Sentiment", sentimentKind(sa.Sentiment),
		fmt.Sprintf("%s (polarity %.3f, subjectivity %.3f)", sa.Sentiment, sa.Polarity, sa.Subjectivity), colorize) + "\n")
	b.WriteString(renderStatusLine("Confidence", statusInfo, fmt.Sprintf("%.3f", sa.Confidence), colorize) + "\n")
	b.WriteString(renderStatusLine("Emotions", statusInfo, formatCounts(sa.Emotions), colorize) + "\n")
	b.WriteString(renderStatusLine("Themes", statusInfo, formatCounts(sa.Themes), colorize) + "\n")

	if meta.TikTokGeneration {
		b.WriteString("\n")
		b.WriteString(renderConcepts(r.TikTokConcepts, colorize))
	} else {
		b.WriteString(renderStatusLine("Reel concepts", statusWarn, "skipped", colorize) + "\n")
	}
	return b.String()
}

func renderConcepts(list []concepts.Concept, colorize bool) string {
	var b strings.Builder
	writeLines(&b, renderSectionHeader(fmt.Sprintf("Reel concepts (%d)", len(list)), colorize))
	rows := make([][]string, 0, len(list))
	for i, c := range list {
		hook, _ := c["viral_hook"].(string)
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			dashIfEmpty(c.Title()),
			dashIfEmpty(hook),
			hashtagList(c.Hashtags()),
			dashIfEmpty(c.Model()),
		})
	}
	b.WriteString(renderTable(
		[]string{"#", "Title", "Hook", "Hashtags", "Model"},
		rows,
		[]columnAlignment{alignRight},
	))
	b.WriteString("\n")
	return b.String()
}

func hashtagList(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		out = append(out, tag)
	}
	return strings.Join(out, " ")
}

// formatCounts renders counts highest first, e.g. "love: 2, hope: 1".
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
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}

func writeLines(b *strings.Builder, lines []string) {
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
