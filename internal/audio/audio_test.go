package audio

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"reelsense/internal/services"
)

func sine(freq, amp float64, sampleRate int, seconds float64) Signal {
	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return Signal{Samples: samples, SampleRate: sampleRate}
}

func rms(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// middle drops the outer quarter on each side to skip filter edge effects.
func middle(x []float64) []float64 {
	q := len(x) / 4
	return x[q : len(x)-q]
}

func writeStereoWAV(t *testing.T, path string, left, right []int, sampleRate int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	data := make([]int, 0, 2*len(left))
	for i := range left {
		data = append(data, left[i], right[i])
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode stereo: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func TestWriteAndLoadWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	src := sine(440, 0.5, 16000, 0.5)
	if err := WriteWAV(path, src); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	got, err := Load(context.Background(), path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.SampleRate != 16000 {
		t.Fatalf("sample rate = %d, want 16000", got.SampleRate)
	}
	if len(got.Samples) != len(src.Samples) {
		t.Fatalf("sample count = %d, want %d", len(got.Samples), len(src.Samples))
	}
	for i := range src.Samples {
		if math.Abs(got.Samples[i]-src.Samples[i]) > 1e-3 {
			t.Fatalf("sample %d = %f, want %f", i, got.Samples[i], src.Samples[i])
		}
	}
	if d := got.Duration(); math.Abs(d-0.5) > 1e-9 {
		t.Fatalf("duration = %f, want 0.5", d)
	}
}

func TestLoadDownmixesStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	left := []int{16384, 16384, 0, -16384}
	right := []int{16384, -16384, 0, -16384}
	writeStereoWAV(t, path, left, right, 8000)

	sig, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	want := []float64{0.5, 0, 0, -0.5}
	if len(sig.Samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(sig.Samples), len(want))
	}
	for i, w := range want {
		if math.Abs(sig.Samples[i]-w) > 1e-6 {
			t.Fatalf("sample %d = %f, want %f", i, sig.Samples[i], w)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := Load(ctx, filepath.Join(dir, "missing.wav"), LoadOptions{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(ctx, text, LoadOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for extension, got %v", err)
	}

	garbage := filepath.Join(dir, "broken.wav")
	if err := os.WriteFile(garbage, []byte("not a wav file at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(ctx, garbage, LoadOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for corrupt wav, got %v", err)
	}
}

func TestLoadConvertsWithFFmpeg(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.wav")
	if err := WriteWAV(fixture, sine(220, 0.25, 22050, 0.25)); err != nil {
		t.Fatal(err)
	}
	probeJSON := filepath.Join(dir, "probe.json")
	probe := `{"streams":[{"index":0,"codec_type":"audio","codec_name":"mp3","sample_rate":"22050","channels":2}],"format":{"duration":"0.25"}}`
	if err := os.WriteFile(probeJSON, []byte(probe), 0o644); err != nil {
		t.Fatal(err)
	}

	binDir := filepath.Join(dir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	ffprobeStub := "#!/bin/sh\ncat " + probeJSON + "\n"
	ffmpegStub := "#!/bin/sh\nfor last; do :; done\ncp " + fixture + " \"$last\"\n"
	if err := os.WriteFile(filepath.Join(binDir, "ffprobe"), []byte(ffprobeStub), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "ffmpeg"), []byte(ffmpegStub), 0o755); err != nil {
		t.Fatal(err)
	}

	input := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(input, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}

	tempDir := filepath.Join(dir, "tmp")
	sig, err := Load(context.Background(), input, LoadOptions{
		FFmpegBinary:  filepath.Join(binDir, "ffmpeg"),
		FFprobeBinary: filepath.Join(binDir, "ffprobe"),
		TempDir:       tempDir,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sig.SampleRate != 22050 {
		t.Fatalf("sample rate = %d", sig.SampleRate)
	}
	if math.Abs(sig.Duration()-0.25) > 1e-3 {
		t.Fatalf("duration = %f", sig.Duration())
	}
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected intermediate wav to be removed, found %d files", len(entries))
	}
}

func TestLowpassAttenuatesHighFrequencies(t *testing.T) {
	const sr = 16000
	lp, err := Lowpass(4, 0.1)
	if err != nil {
		t.Fatalf("Lowpass: %v", err)
	}
	low := lp.FiltFilt(sine(100, 1, sr, 1).Samples)
	high := lp.FiltFilt(sine(5000, 1, sr, 1).Samples)

	if got := rms(middle(low)); math.Abs(got-1/math.Sqrt2) > 0.02 {
		t.Fatalf("passband rms = %f, want ~%f", got, 1/math.Sqrt2)
	}
	if got := rms(middle(high)); got > 0.001 {
		t.Fatalf("stopband rms = %f, want < 0.001", got)
	}
}

func TestBandpassKeepsVocalRange(t *testing.T) {
	const sr = 16000
	nyquist := float64(sr) / 2
	bp, err := Bandpass(4, 300/nyquist, 3400/nyquist)
	if err != nil {
		t.Fatalf("Bandpass: %v", err)
	}
	if len(bp) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(bp))
	}
	voice := rms(middle(bp.FiltFilt(sine(1000, 1, sr, 1).Samples)))
	rumble := rms(middle(bp.FiltFilt(sine(40, 1, sr, 1).Samples)))
	hiss := rms(middle(bp.FiltFilt(sine(7500, 1, sr, 1).Samples)))

	if math.Abs(voice-1/math.Sqrt2) > 0.03 {
		t.Fatalf("1 kHz rms = %f, want ~0.707", voice)
	}
	if rumble > 0.01 || hiss > 0.01 {
		t.Fatalf("expected out-of-band tones attenuated, got rumble=%f hiss=%f", rumble, hiss)
	}
}

func TestFilterDesignValidation(t *testing.T) {
	if _, err := Lowpass(0, 0.1); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for order 0, got %v", err)
	}
	if _, err := Lowpass(4, 1.2); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for cutoff, got %v", err)
	}
	if _, err := Bandpass(4, 0.5, 0.2); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for inverted band, got %v", err)
	}
	odd, err := Lowpass(3, 0.25)
	if err != nil {
		t.Fatalf("Lowpass odd order: %v", err)
	}
	if len(odd) != 2 {
		t.Fatalf("expected biquad plus first-order section, got %d", len(odd))
	}
	// Unity gain at DC.
	out := odd.Filter(make1s(2000))
	if math.Abs(out[len(out)-1]-1) > 1e-6 {
		t.Fatalf("dc gain = %f, want 1", out[len(out)-1])
	}
}

func make1s(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func TestNormalizeAndMix(t *testing.T) {
	got := Normalize([]float64{0.25, -0.5, 0.1})
	if got[1] != -1 || got[0] != 0.5 {
		t.Fatalf("unexpected normalize result %v", got)
	}
	silent := Normalize([]float64{0, 0})
	if silent[0] != 0 || silent[1] != 0 {
		t.Fatalf("silence should stay silent, got %v", silent)
	}

	mixed := Mix([]float64{1, 1, 1}, []float64{0, 1}, 0.7, 0.3)
	if len(mixed) != 2 {
		t.Fatalf("expected mix to truncate to shorter input, got %d", len(mixed))
	}
	if math.Abs(mixed[0]-0.7) > 1e-12 || math.Abs(mixed[1]-1) > 1e-12 {
		t.Fatalf("unexpected mix %v", mixed)
	}
}
