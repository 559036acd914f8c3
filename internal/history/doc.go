// Package history persists analysis runs and cached transcriptions in a
// SQLite database.
//
// The schema is built from numbered SQL files under migrations/, applied in
// order inside one transaction and tracked in schema_migrations. The
// transcription cache is keyed by the audio file's SHA-256 together with the
// backend, model, and language that produced the text, so re-analysing the
// same file skips the slow transcription step.
package history
