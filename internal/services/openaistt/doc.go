// Package openaistt wraps the hosted Whisper transcription endpoint using
// go-openai. It is the alternative to the local WhisperX backend for machines
// without the Python toolchain.
package openaistt
