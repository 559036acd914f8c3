// Package services defines shared utilities consumed by the analysis pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names and run correlation identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper, and ExitCode which turns
//     those markers into CLI exit statuses.
//
// Integrations with external tools and APIs live in subpackages (llm,
// whisperx, openaistt).
package services
