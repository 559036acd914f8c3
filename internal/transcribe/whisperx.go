package transcribe

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"reelsense/internal/logging"
	"reelsense/internal/services"
	"reelsense/internal/services/whisperx"
)

const (
	whisperXLockName  = "whisperx.lock"
	lockRetryInterval = 500 * time.Millisecond
)

// WhisperX runs the local WhisperX CLI. Only one run per work directory
// proceeds at a time; concurrent invocations wait on the lock file.
type WhisperX struct {
	svc     *whisperx.Service
	workDir string
	logger  *slog.Logger
}

// NewWhisperX wraps svc, writing intermediate output under workDir.
func NewWhisperX(svc *whisperx.Service, workDir string, logger *slog.Logger) *WhisperX {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &WhisperX{svc: svc, workDir: workDir, logger: logger}
}

// Name implements Transcriber.
func (w *WhisperX) Name() string { return "whisperx" }

// Model implements Transcriber.
func (w *WhisperX) Model() string { return w.svc.Model() }

// Transcribe implements Transcriber.
func (w *WhisperX) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	if err := os.MkdirAll(w.workDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "transcribe", "whisperx", "create work dir", err)
	}

	lockPath := filepath.Join(w.workDir, whisperXLockName)
	lock := flock.New(lockPath)
	acquired, err := lock.TryLock()
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "acquire lock", err)
	}
	if !acquired {
		w.logger.Info("waiting for another whisperx run to finish", logging.String("lock", lockPath))
		acquired, err = lock.TryLockContext(ctx, lockRetryInterval)
		if err != nil || !acquired {
			if ctx.Err() != nil {
				return "", services.Wrap(services.ErrTimeout, "transcribe", "whisperx", "cancelled while waiting for lock", ctx.Err())
			}
			return "", services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "acquire lock", err)
		}
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Warn("failed to release whisperx lock", logging.Error(err))
		}
	}()

	runDir, err := os.MkdirTemp(w.workDir, "run-*")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "transcribe", "whisperx", "create run dir", err)
	}
	defer os.RemoveAll(runDir)

	started := time.Now()
	w.logger.Info("whisperx transcription started",
		logging.String(logging.FieldEventType, "transcription_start"),
		logging.String("audio_file", audioPath),
		logging.String("model", w.Model()),
		logging.Bool("cuda", w.svc.CUDAEnabled()),
	)
	result, err := w.svc.TranscribeFile(ctx, audioPath, runDir, language)
	if err != nil {
		return "", err
	}
	w.logger.Info("whisperx transcription finished",
		logging.String(logging.FieldEventType, "transcription_complete"),
		logging.Int("segments", len(result.Segments)),
		logging.Duration("elapsed", time.Since(started)),
	)
	if result.Text == "" {
		w.logger.Debug("whisperx returned no text", logging.String("run_dir", runDir))
	}
	return result.Text, nil
}
