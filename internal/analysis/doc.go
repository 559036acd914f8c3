// Package analysis runs the full song pipeline and owns the result document.
//
// An Analyzer loads the audio, transcribes it (through the history cache
// when one is attached), scores the lyrics' sentiment, extracts musical
// features, and optionally asks the concepts generator for reel ideas. Only
// loading and transcription can fail a run; concept problems degrade to
// fallback concepts or a skipped section.
//
// Result mirrors the JSON written to integrated_analysis_<stem>.json.
package analysis
