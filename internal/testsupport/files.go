package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"reelsense/internal/audio"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteToneWAV writes a mono 16-bit WAV holding a sine at freq Hz with
// clicks every beatPeriod seconds (no clicks when beatPeriod is 0).
func WriteToneWAV(t testing.TB, path string, freq float64, seconds float64, sampleRate int, beatPeriod float64) {
	t.Helper()

	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	if beatPeriod > 0 {
		step := int(beatPeriod * float64(sampleRate))
		for start := 0; start < n; start += step {
			for j := 0; j < 200 && start+j < n; j++ {
				samples[start+j] += 0.6 * math.Exp(-float64(j)/40)
			}
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := audio.WriteWAV(path, audio.Signal{Samples: samples, SampleRate: sampleRate}); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}
