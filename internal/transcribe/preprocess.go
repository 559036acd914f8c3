package transcribe

import (
	"fmt"
	"os"

	"reelsense/internal/audio"
	"reelsense/internal/fileutil"
	"reelsense/internal/services"
)

const filterOrder = 4

// PreprocessOptions configures the vocal emphasis pass.
type PreprocessOptions struct {
	// NoiseCutoff is the low-pass cutoff as a fraction of Nyquist.
	NoiseCutoff float64
	VocalLowHz  float64
	VocalHighHz float64
	// VocalMix is the share of the band-passed signal in the output.
	VocalMix float64
}

// DefaultPreprocessOptions matches the [audio] config defaults.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{NoiseCutoff: 0.1, VocalLowHz: 300, VocalHighHz: 3400, VocalMix: 0.3}
}

// Preprocess peak-normalizes sig, applies a zero-phase low-pass, then mixes
// the result with its vocal band.
func Preprocess(sig audio.Signal, opts PreprocessOptions) (audio.Signal, error) {
	if sig.Empty() {
		return audio.Signal{}, services.Wrap(services.ErrValidation, "preprocess", "input", "empty signal", nil)
	}
	nyquist := float64(sig.SampleRate) / 2
	low := opts.VocalLowHz / nyquist
	high := opts.VocalHighHz / nyquist
	if high >= 1 {
		return audio.Signal{}, services.Wrap(services.ErrValidation, "preprocess", "vocal band",
			fmt.Sprintf("%.0f Hz exceeds Nyquist %.0f Hz", opts.VocalHighHz, nyquist), nil)
	}

	lowpass, err := audio.Lowpass(filterOrder, opts.NoiseCutoff)
	if err != nil {
		return audio.Signal{}, err
	}
	bandpass, err := audio.Bandpass(filterOrder, low, high)
	if err != nil {
		return audio.Signal{}, err
	}

	normalized := audio.Normalize(sig.Samples)
	smoothed := lowpass.FiltFilt(normalized)
	vocals := bandpass.FiltFilt(smoothed)
	mixed := audio.Mix(smoothed, vocals, 1-opts.VocalMix, opts.VocalMix)
	return audio.Signal{Samples: mixed, SampleRate: sig.SampleRate}, nil
}

// WritePreprocessed runs Preprocess and writes the result to a temporary WAV
// in dir. The caller removes the returned file.
func WritePreprocessed(sig audio.Signal, opts PreprocessOptions, dir string) (string, error) {
	processed, err := Preprocess(sig, opts)
	if err != nil {
		return "", err
	}
	path, err := fileutil.TempPath(dir, "reelsense-preprocessed-*.wav")
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "preprocess", "temp file", "", err)
	}
	if err := audio.WriteWAV(path, processed); err != nil {
		_ = os.Remove(path)
		return "", services.Wrap(services.ErrExternalTool, "preprocess", "write wav", "", err)
	}
	return path, nil
}
