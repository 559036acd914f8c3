// Package language normalizes the transcription language setting.
//
// Users may pass BCP 47 tags ("pt-BR"), ISO 639 codes ("en", "eng"), or
// English names ("spanish"); the transcription backends always receive a
// two-letter ISO 639-1 code, or nothing when detection is left to Whisper.
package language
