package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reelsense/internal/config"
)

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 20

// ErrAmbiguousID is returned when a run id prefix matches several runs.
var ErrAmbiguousID = errors.New("run id prefix is ambiguous")

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the history database named by cfg.History.Path.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil || strings.TrimSpace(cfg.History.Path) == "" {
		return nil, errors.New("history path not configured")
	}
	return OpenPath(cfg.History.Path)
}

// OpenPath initializes or connects to the database at path and applies
// pending migrations.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const runColumns = "id, audio_path, audio_sha256, transcriber, model, language, status, sentiment, polarity, tempo_bpm, duration_seconds, concepts_generated, output_path, error_message, started_at, finished_at"

// RecordRun inserts or replaces a run.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id required")
	}
	if strings.TrimSpace(run.AudioPath) == "" {
		return errors.New("run audio path required")
	}
	if run.Status == "" {
		run.Status = StatusCompleted
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.AudioPath,
		nullableString(run.AudioSHA256),
		nullableString(run.Transcriber),
		nullableString(run.Model),
		nullableString(run.Language),
		string(run.Status),
		nullableString(run.Sentiment),
		run.Polarity,
		run.TempoBPM,
		run.DurationSeconds,
		run.ConceptsGenerated,
		nullableString(run.OutputPath),
		nullableString(run.ErrorMessage),
		formatTime(run.StartedAt),
		nullableTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by id, accepting an unambiguous id prefix. It returns
// nil without error when nothing matches.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("run id required")
	}
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == nil {
		return &run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
	if err != nil {
		return nil, fmt.Errorf("get run by prefix: %w", err)
	}
	defer rows.Close()
	var matches []Run
	for rows.Next() {
		match, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run by prefix: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// CachedTranscription returns the stored text for key. ok is false on a miss.
func (s *Store) CachedTranscription(ctx context.Context, key TranscriptionKey) (text string, ok bool, err error) {
	if !key.valid() {
		return "", false, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT text FROM transcriptions WHERE audio_sha256 = ? AND backend = ? AND model = ? AND language = ?`,
		key.AudioSHA256, key.Backend, key.Model, key.Language,
	)
	if err := row.Scan(&text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read cached transcription: %w", err)
	}
	return text, true, nil
}

// StoreTranscription caches text under key, replacing any earlier entry.
func (s *Store) StoreTranscription(ctx context.Context, key TranscriptionKey, text string) error {
	if !key.valid() {
		return errors.New("transcription cache key incomplete")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO transcriptions (audio_sha256, backend, model, language, text, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		key.AudioSHA256, key.Backend, key.Model, key.Language, text, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("store transcription: %w", err)
	}
	return nil
}

// PruneTranscriptions removes cache entries older than cutoff and reports how
// many were deleted.
func (s *Store) PruneTranscriptions(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transcriptions WHERE created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune transcriptions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune transcriptions: %w", err)
	}
	return n, nil
}
