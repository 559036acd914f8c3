// Package concepts asks a hosted chat model for short-form video ("reel")
// concepts that fit an analyzed song.
//
// The prompt carries a transcript excerpt, the sentiment label, emotion and
// theme counts, tempo, and duration. The reply is free-form JSON: the first
// '{' to the last '}' is extracted and kept as returned, then stamped with
// generation metadata. Any failure yields a fallback concept so a run always
// has something to show.
package concepts
