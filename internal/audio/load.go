package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"reelsense/internal/fileutil"
	"reelsense/internal/logging"
	"reelsense/internal/media/ffprobe"
	"reelsense/internal/services"
)

// SupportedExtensions lists the input formats Load accepts.
var SupportedExtensions = []string{".wav", ".mp3", ".flac", ".m4a", ".ogg", ".opus", ".aac", ".aiff", ".aif"}

// LoadOptions configures decoding of non-WAV input.
type LoadOptions struct {
	FFmpegBinary  string
	FFprobeBinary string
	// TempDir holds the intermediate WAV; empty uses the system temp dir.
	TempDir string
	Logger  *slog.Logger
}

// Supported reports whether path has an accepted audio extension.
func Supported(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// Load decodes path into a mono signal at its native sample rate.
func Load(ctx context.Context, path string, opts LoadOptions) (Signal, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Signal{}, services.Wrap(services.ErrNotFound, "load", "stat", fmt.Sprintf("audio file %q does not exist", path), nil)
		}
		return Signal{}, services.Wrap(services.ErrValidation, "load", "stat", path, err)
	}
	if info.IsDir() {
		return Signal{}, services.Wrap(services.ErrValidation, "load", "stat", fmt.Sprintf("%q is a directory", path), nil)
	}
	if !Supported(path) {
		return Signal{}, services.Wrap(services.ErrValidation, "load", "format",
			fmt.Sprintf("unsupported extension %q (supported: %s)", filepath.Ext(path), strings.Join(SupportedExtensions, ", ")), nil)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		sig, err := ReadWAV(path)
		if err == nil {
			return checkSignal(path, sig)
		}
		if !errors.Is(err, errUnsupportedWAV) {
			return Signal{}, services.Wrap(services.ErrValidation, "load", "decode wav", path, err)
		}
		logger.Debug("wav encoding needs conversion", logging.String("audio_file", path), logging.Error(err))
	}

	return convertAndLoad(ctx, path, opts, logger)
}

func convertAndLoad(ctx context.Context, path string, opts LoadOptions, logger *slog.Logger) (Signal, error) {
	probe, err := ffprobe.Inspect(ctx, opts.FFprobeBinary, path)
	if err != nil {
		return Signal{}, err
	}
	if probe.AudioStreamCount() == 0 {
		return Signal{}, services.Wrap(services.ErrValidation, "load", "probe", fmt.Sprintf("no audio stream in %q", path), nil)
	}
	stream, _ := probe.PrimaryAudio()
	sampleRate := stream.SampleRateHz()

	wavPath, err := fileutil.TempPath(opts.TempDir, "reelsense-decode-*.wav")
	if err != nil {
		return Signal{}, services.Wrap(services.ErrExternalTool, "load", "temp file", "", err)
	}
	defer os.Remove(wavPath)

	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", path, "-vn", "-ac", "1", "-c:a", "pcm_s16le"}
	if sampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(sampleRate))
	}
	args = append(args, wavPath)

	binary := strings.TrimSpace(opts.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	logger.Debug("converting audio with ffmpeg",
		logging.String("audio_file", path),
		logging.String("wav_path", wavPath),
		logging.Int("sample_rate", sampleRate),
	)
	cmd := exec.CommandContext(ctx, binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return Signal{}, services.Wrap(services.ErrTimeout, "load", "ffmpeg", "conversion cancelled", ctx.Err())
		}
		return Signal{}, services.Wrap(services.ErrExternalTool, "load", "ffmpeg", strings.TrimSpace(string(output)), err)
	}

	sig, err := ReadWAV(wavPath)
	if err != nil {
		return Signal{}, services.Wrap(services.ErrExternalTool, "load", "decode converted wav", path, err)
	}
	return checkSignal(path, sig)
}

func checkSignal(path string, sig Signal) (Signal, error) {
	if sig.Empty() {
		return Signal{}, services.Wrap(services.ErrValidation, "load", "decode", fmt.Sprintf("%q contains no audio samples", path), nil)
	}
	return sig, nil
}
