package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"reelsense/internal/services"
)

func argValue(args []string, flag string) (string, bool) {
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		return "", false
	}
	return args[idx+1], true
}

func TestModelName(t *testing.T) {
	cases := map[string]string{
		"":         "small",
		"base":     "base",
		"small":    "small",
		"medium":   "medium",
		"large":    "large-v3",
		"large-v2": "large-v2",
	}
	for in, want := range cases {
		if got := ModelName(in); got != want {
			t.Errorf("ModelName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildArgsCPU(t *testing.T) {
	svc := NewService(Config{Model: "large", VADMethod: VADMethodPyannote, HFToken: "hf"})
	args := svc.buildArgs("/tmp/in.wav", "/tmp/out", "english")

	if args[0] != "--index-url" || args[1] != PypiIndexURL {
		t.Fatalf("expected pypi index first, got %v", args[:2])
	}
	if v, _ := argValue(args, "--model"); v != "large-v3" {
		t.Fatalf("expected large-v3 model, got %q", v)
	}
	if v, _ := argValue(args, "--language"); v != "en" {
		t.Fatalf("expected normalized language en, got %q", v)
	}
	if v, _ := argValue(args, "--hf_token"); v != "hf" {
		t.Fatalf("expected hf token for pyannote, got %q", v)
	}
	if v, _ := argValue(args, "--device"); v != CPUDevice {
		t.Fatalf("expected cpu device, got %q", v)
	}
	if v, _ := argValue(args, "--compute_type"); v != CPUComputeType {
		t.Fatalf("expected float32 compute type, got %q", v)
	}
}

func TestBuildArgsCUDAAndAutoLanguage(t *testing.T) {
	svc := NewService(Config{Model: "small", CUDAEnabled: true})
	args := svc.buildArgs("/tmp/in.wav", "/tmp/out", "auto")

	if v, _ := argValue(args, "--index-url"); v != CUDAIndexURL {
		t.Fatalf("expected CUDA index url, got %q", v)
	}
	if _, ok := argValue(args, "--language"); ok {
		t.Fatal("expected no language flag for auto detection")
	}
	if v, _ := argValue(args, "--vad_method"); v != VADMethodSilero {
		t.Fatalf("expected silero default, got %q", v)
	}
	if _, ok := argValue(args, "--hf_token"); ok {
		t.Fatal("expected no hf token for silero")
	}
	if v, _ := argValue(args, "--device"); v != CUDADevice {
		t.Fatalf("expected cuda device, got %q", v)
	}
}

func TestTranscribeFileReadsSegments(t *testing.T) {
	outDir := t.TempDir()
	source := filepath.Join(t.TempDir(), "song.wav")

	svc := NewService(Config{Model: "base"})
	var gotName string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		dir, _ := argValue(args, "--output_dir")
		payload := `{"segments":[{"text":" Hold me close ","start":0,"end":2.5},{"text":"","start":2.5,"end":3},{"text":"under the stars","start":3,"end":5}]}`
		return os.WriteFile(filepath.Join(dir, "song.json"), []byte(payload), 0o644)
	})

	result, err := svc.TranscribeFile(context.Background(), source, outDir, "en")
	if err != nil {
		t.Fatalf("TranscribeFile returned error: %v", err)
	}
	if gotName != UVXCommand {
		t.Fatalf("expected uvx command, got %q", gotName)
	}
	if result.Text != "Hold me close under the stars" {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if len(result.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(result.Segments))
	}
	if !strings.HasSuffix(result.JSONPath, "song.json") {
		t.Fatalf("unexpected json path %q", result.JSONPath)
	}
}

func TestTranscribeFileCommandFailure(t *testing.T) {
	svc := NewService(Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})
	_, err := svc.TranscribeFile(context.Background(), filepath.Join(t.TempDir(), "a.wav"), t.TempDir(), "en")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestTranscribeFileMissingOutput(t *testing.T) {
	svc := NewService(Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return nil })
	_, err := svc.TranscribeFile(context.Background(), filepath.Join(t.TempDir(), "a.wav"), t.TempDir(), "en")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error for missing JSON, got %v", err)
	}
}

func TestTranscribeFileRequiresSource(t *testing.T) {
	svc := NewService(Config{})
	if _, err := svc.TranscribeFile(context.Background(), "", "", "en"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
