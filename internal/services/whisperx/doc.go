// Package whisperx runs WhisperX through uvx and reads back its transcript.
//
// Service.TranscribeFile builds the uvx argument list from Config (model size,
// CUDA, VAD method), runs it, and parses the sentence-level JSON segments
// WhisperX writes to the output directory. Tests swap the process launcher with
// WithCommandRunner.
package whisperx
