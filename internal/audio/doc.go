// Package audio decodes input files into mono sample buffers and derives the
// low-level measurements reported in an analysis: RMS energy, pitch, tempo,
// and spectral centroid.
//
// WAV input is decoded directly with go-audio. Compressed formats are first
// converted by ffmpeg into a temporary mono PCM WAV at the source sample
// rate. The package also carries the Butterworth filters and helpers used to
// prepare audio for transcription.
package audio
