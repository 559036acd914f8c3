// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and returns a Result; helpers pick out the primary
// audio stream, its sample rate, the duration, and container tags. The audio
// loader uses it to reject inputs without an audio stream before decoding.
package ffprobe
