package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelsense/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcribe", "whisperx", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"not found", services.Wrap(services.ErrNotFound, "audio", "load", "missing", nil), services.ExitUsage},
		{"validation", services.Wrap(services.ErrValidation, "audio", "load", "bad extension", nil), services.ExitUsage},
		{"config", fmt.Errorf("outer: %w", services.ErrConfiguration), services.ExitUsage},
		{"tool", services.Wrap(services.ErrExternalTool, "transcribe", "run", "crash", nil), services.ExitFailure},
		{"plain", errors.New("io"), services.ExitFailure},
	}
	for _, tc := range cases {
		if got := services.ExitCode(tc.err); got != tc.want {
			t.Errorf("%s: ExitCode = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !services.Retryable(services.Wrap(services.ErrTimeout, "llm", "request", "deadline", nil)) {
		t.Fatal("expected timeout to be retryable")
	}
	if services.Retryable(services.Wrap(services.ErrValidation, "llm", "request", "bad", nil)) {
		t.Fatal("expected validation to be terminal")
	}
}
