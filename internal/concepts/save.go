package concepts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reelsense/internal/fileutil"
)

// DefaultPath is where a standalone concept file goes when no output path
// is given: <outputDir>/tiktok_concepts_YYYYMMDD_HHMMSS.json.
func DefaultPath(outputDir string, now time.Time) string {
	return filepath.Join(outputDir, "tiktok_concepts_"+now.Format("20060102_150405")+".json")
}

// Save writes concepts as indented JSON, creating the parent directory.
func Save(concepts []Concept, path string) error {
	if concepts == nil {
		concepts = []Concept{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(concepts); err != nil {
		return fmt.Errorf("encode concepts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create concepts directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write concepts: %w", err)
	}
	return nil
}
