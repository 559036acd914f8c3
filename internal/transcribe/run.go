package transcribe

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"reelsense/internal/audio"
	"reelsense/internal/logging"
)

// Options controls a Run.
type Options struct {
	Language      string
	Preprocess    bool
	PostProcess   bool
	Preprocessing PreprocessOptions
	// TempDir holds the preprocessed WAV.
	TempDir string
}

// Result is the outcome of a Run.
type Result struct {
	Text          string
	Raw           string
	Preprocessed  bool
	PostProcessed bool
	Elapsed       time.Duration
}

// Run transcribes sourcePath with t. When preprocessing is enabled, sig is
// filtered into a temp WAV that is handed to the backend and removed
// afterwards. Preprocessing failures fall back to the original file.
func Run(ctx context.Context, t Transcriber, sourcePath string, sig audio.Signal, opts Options, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = "en"
	}

	input := sourcePath
	var result Result
	if opts.Preprocess {
		path, err := WritePreprocessed(sig, opts.Preprocessing, opts.TempDir)
		if err != nil {
			logging.WarnWithContext(logger, "audio preprocessing failed; transcribing original file", "preprocess_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the input sample rate supports the vocal band"),
				logging.String(logging.FieldImpact, "transcription may pick up more instrumental noise"),
			)
		} else {
			defer func() {
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					logger.Debug("failed to remove preprocessed audio", logging.String("wav_path", path), logging.Error(err))
				}
			}()
			input = path
			result.Preprocessed = true
			logger.Debug("audio preprocessed", logging.String("wav_path", path))
		}
	}

	started := time.Now()
	raw, err := t.Transcribe(ctx, input, language)
	if err != nil {
		return Result{}, err
	}
	result.Elapsed = time.Since(started)
	result.Raw = raw
	result.Text = raw
	if opts.PostProcess {
		result.Text = PostProcess(raw)
		result.PostProcessed = true
	}

	logger.Info("transcription complete",
		logging.String("transcriber", t.Name()),
		logging.String("model", t.Model()),
		logging.String("language", language),
		logging.Int("characters", len(result.Text)),
		logging.Duration("stage_duration", result.Elapsed),
	)
	return result, nil
}
