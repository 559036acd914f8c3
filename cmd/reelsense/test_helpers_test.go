package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsense/internal/config"
	"reelsense/internal/testsupport"
)

const stubLyrics = "I love you so much, dancing under the moonlight. My heart is on fire tonight."

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	for _, key := range []string{"OPENROUTER_API_KEY", "OPENAI_API_KEY", "HF_TOKEN", "HUGGING_FACE_HUB_TOKEN", "REELSENSE_CONFIG", "NO_COLOR"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "reelsense.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
output_dir = %q
data_dir = %q
log_dir = %q
cache_dir = %q

[transcription]
backend = %q

[llm]
api_key = %q
base_url = %q

[concepts]
count = 2

[history]
enabled = %t
path = %q

[logging]
to_file = false
level = "error"
`,
		cfg.Paths.OutputDir,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.CacheDir,
		cfg.Transcription.Backend,
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
		cfg.History.Enabled,
		cfg.History.Path,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// installWhisperXStub puts a uvx on PATH that writes WhisperX-style JSON for
// whatever source file it is handed.
func installWhisperXStub(t *testing.T, env *cliTestEnv) {
	t.Helper()
	binDir := filepath.Join(env.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	script := `#!/bin/sh
src=""
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    whisperx) shift; src="$1" ;;
    --output_dir) shift; out="$1" ;;
  esac
  shift
done
base=$(basename "$src")
base="${base%.*}"
printf '{"segments":[{"text":"` + stubLyrics + `","start":0,"end":3}]}' > "$out/$base.json"
`
	for name, body := range map[string]string{
		"uvx":     script,
		"ffmpeg":  "#!/bin/sh\nexit 0\n",
		"ffprobe": "#!/bin/sh\nexit 0\n",
	} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte(body), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
