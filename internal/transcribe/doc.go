// Package transcribe turns an audio file into lyric text.
//
// A Transcriber backend does the speech-to-text work: WhisperX launched
// through uvx (serialized across processes by a lock file in the cache
// directory) or the hosted OpenAI audio API. Run wraps a backend with the
// optional vocal-emphasis preprocessing and the post-processing pass that
// drops noise fragments from music transcripts.
package transcribe
