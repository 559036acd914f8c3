package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"reelsense/internal/fileutil"
)

const (
	wavFormatPCM   = 1
	writeBitDepth  = 16
	writeMaxSample = 1<<(writeBitDepth-1) - 1
)

// errUnsupportedWAV marks WAV files go-audio cannot decode as integer PCM
// (IEEE float, extensible with exotic layouts). Load retries them via ffmpeg.
var errUnsupportedWAV = errors.New("unsupported wav encoding")

// ReadWAV decodes a PCM WAV file and downmixes it to mono.
func ReadWAV(path string) (Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signal{}, err
	}
	defer f.Close()
	return DecodeWAV(f)
}

// DecodeWAV decodes PCM WAV data from r and downmixes it to mono.
func DecodeWAV(r io.ReadSeeker) (Signal, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Signal{}, fmt.Errorf("decode wav: invalid file")
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return Signal{}, fmt.Errorf("decode wav: format %d: %w", dec.WavAudioFormat, errUnsupportedWAV)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Signal{}, fmt.Errorf("decode wav: %w", err)
	}
	channels := int(dec.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	if channels <= 0 {
		channels = 1
	}
	bitDepth := int(dec.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}
	return Signal{
		Samples:    downmix(buf.Data, channels, bitDepth),
		SampleRate: int(dec.SampleRate),
	}, nil
}

func downmix(data []int, channels, bitDepth int) []float64 {
	frames := len(data) / channels
	out := make([]float64, frames)
	scale := math.Ldexp(1, bitDepth-1)
	offset := 0.0
	if bitDepth == 8 {
		// 8-bit WAV is unsigned.
		offset = 128
	}
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += (float64(data[i*channels+c]) - offset) / scale
		}
		out[i] = clamp(sum / float64(channels))
	}
	return out
}

// WriteWAV encodes sig as 16-bit PCM mono. The encoder writes into a temp
// file beside path which is renamed into place once the header is final.
func WriteWAV(path string, sig Signal) error {
	if sig.SampleRate <= 0 {
		return fmt.Errorf("write wav: invalid sample rate %d", sig.SampleRate)
	}
	dir := filepath.Dir(path)
	tmp, err := fileutil.TempPath(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	// No-op once renamed.
	defer os.Remove(tmp)

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	enc := wav.NewEncoder(f, sig.SampleRate, writeBitDepth, 1, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sig.SampleRate},
		Data:           make([]int, len(sig.Samples)),
		SourceBitDepth: writeBitDepth,
	}
	for i, v := range sig.Samples {
		buf.Data[i] = int(math.Round(clamp(v) * writeMaxSample))
	}
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("write wav: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write wav: finalize: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write wav: close: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write wav: rename: %w", err)
	}
	return nil
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
