package audio

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultFrameLength = 2048
	DefaultHopLength   = 512

	defaultPitchMin = 150.0
	defaultPitchMax = 4000.0

	// Peaks below this share of the frame maximum are ignored.
	pitchPeakRatio = 0.1
	// Only interpolated peaks stronger than this contribute to the average.
	pitchMagnitudeFloor = 0.1

	tempoMinBPM   = 30.0
	tempoMaxBPM   = 300.0
	tempoPriorBPM = 120.0
	// Width of the log-normal tempo prior, in octaves.
	tempoPriorOctaves = 1.0
	onsetTopDB        = 80.0
)

// FeatureOptions configures framing for ExtractFeatures.
type FeatureOptions struct {
	FrameLength int
	HopLength   int
	PitchMin    float64
	PitchMax    float64
}

// Features holds the averaged measurements for one signal.
type Features struct {
	AverageRMS       float64
	AveragePitchHz   float64
	TempoBPM         float64
	SpectralCentroid float64
}

func (o FeatureOptions) withDefaults() FeatureOptions {
	if o.FrameLength <= 0 {
		o.FrameLength = DefaultFrameLength
	}
	if o.HopLength <= 0 || o.HopLength > o.FrameLength {
		o.HopLength = DefaultHopLength
	}
	if o.PitchMin <= 0 {
		o.PitchMin = defaultPitchMin
	}
	if o.PitchMax <= o.PitchMin {
		o.PitchMax = defaultPitchMax
	}
	return o
}

// ExtractFeatures computes RMS, pitch, tempo, and spectral centroid. A feature
// that cannot be computed is reported as 0.
func ExtractFeatures(sig Signal, opts FeatureOptions) Features {
	if sig.Empty() {
		return Features{}
	}
	opts = opts.withDefaults()
	frames := frameSignal(sig.Samples, opts.FrameLength, opts.HopLength)
	spectra := magnitudeSpectra(frames, opts.FrameLength)
	sr := float64(sig.SampleRate)

	return Features{
		AverageRMS:       finite(averageRMS(frames)),
		AveragePitchHz:   finite(averagePitch(spectra, sr, opts)),
		TempoBPM:         finite(estimateTempo(spectra, sr, opts.HopLength)),
		SpectralCentroid: finite(averageCentroid(spectra, sr, opts.FrameLength)),
	}
}

// frameSignal zero-pads by half a frame on each side so frame t is centred
// on sample t*hop.
func frameSignal(samples []float64, frameLength, hop int) [][]float64 {
	half := frameLength / 2
	padded := make([]float64, len(samples)+2*half)
	copy(padded[half:], samples)
	count := 1 + (len(padded)-frameLength)/hop
	if count < 1 {
		return nil
	}
	frames := make([][]float64, count)
	for t := range count {
		frames[t] = padded[t*hop : t*hop+frameLength]
	}
	return frames
}

func magnitudeSpectra(frames [][]float64, frameLength int) [][]float64 {
	fft := fourier.NewFFT(frameLength)
	window := hann(frameLength)
	windowed := make([]float64, frameLength)
	coeffs := make([]complex128, frameLength/2+1)
	spectra := make([][]float64, len(frames))
	for t, frame := range frames {
		floats.MulTo(windowed, frame, window)
		coeffs = fft.Coefficients(coeffs, windowed)
		mag := make([]float64, len(coeffs))
		for k, c := range coeffs {
			mag[k] = cmplx.Abs(c)
		}
		spectra[t] = mag
	}
	return spectra
}

// hann returns a periodic Hann window.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

func averageRMS(frames [][]float64) float64 {
	if len(frames) == 0 {
		return 0
	}
	values := make([]float64, len(frames))
	for t, frame := range frames {
		values[t] = math.Sqrt(floats.Dot(frame, frame) / float64(len(frame)))
	}
	return stat.Mean(values, nil)
}

func averageCentroid(spectra [][]float64, sr float64, frameLength int) float64 {
	if len(spectra) == 0 {
		return 0
	}
	binHz := sr / float64(frameLength)
	values := make([]float64, len(spectra))
	for t, mag := range spectra {
		total := floats.Sum(mag)
		if total <= 0 {
			continue
		}
		weighted := 0.0
		for k, m := range mag {
			weighted += float64(k) * binHz * m
		}
		values[t] = weighted / total
	}
	return stat.Mean(values, nil)
}

// averagePitch tracks interpolated spectral peaks in the pitch range and
// averages the frequencies of the strong ones.
func averagePitch(spectra [][]float64, sr float64, opts FeatureOptions) float64 {
	binHz := sr / float64(opts.FrameLength)
	lo := max(1, int(math.Floor(opts.PitchMin/binHz)))
	var pitches []float64
	for _, mag := range spectra {
		hi := min(len(mag)-2, int(math.Ceil(opts.PitchMax/binHz)))
		if hi <= lo {
			continue
		}
		threshold := pitchPeakRatio * floats.Max(mag)
		for k := lo; k <= hi; k++ {
			m := mag[k]
			if m <= threshold || m <= mag[k-1] || m < mag[k+1] {
				continue
			}
			avg := 0.5 * (mag[k+1] - mag[k-1])
			curv := 2*m - mag[k-1] - mag[k+1]
			shift := 0.0
			if curv != 0 {
				shift = avg / curv
			}
			freq := (float64(k) + shift) * binHz
			strength := m + 0.5*avg*shift
			if strength > pitchMagnitudeFloor && freq >= opts.PitchMin && freq <= opts.PitchMax {
				pitches = append(pitches, freq)
			}
		}
	}
	if len(pitches) == 0 {
		return 0
	}
	return stat.Mean(pitches, nil)
}

// estimateTempo autocorrelates a spectral-flux onset envelope and picks the
// lag with the best score under a log-normal prior centred on 120 BPM.
func estimateTempo(spectra [][]float64, sr float64, hop int) float64 {
	env := onsetEnvelope(spectra)
	if len(env) < 4 || floats.Max(env) <= 1e-10 {
		return 0
	}
	mean := stat.Mean(env, nil)
	centered := make([]float64, len(env))
	copy(centered, env)
	floats.AddConst(-mean, centered)

	framesPerMinute := 60 * sr / float64(hop)
	minLag := max(1, int(math.Floor(framesPerMinute/tempoMaxBPM)))
	maxLag := min(len(centered)-1, int(math.Ceil(framesPerMinute/tempoMinBPM)))
	if maxLag < minLag {
		return 0
	}

	bestScore := 0.0
	bestBPM := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		bpm := framesPerMinute / float64(lag)
		if bpm < tempoMinBPM || bpm > tempoMaxBPM {
			continue
		}
		n := len(centered) - lag
		ac := floats.Dot(centered[:n], centered[lag:]) / float64(n)
		if ac <= 0 {
			continue
		}
		z := math.Log2(bpm/tempoPriorBPM) / tempoPriorOctaves
		score := ac * math.Exp(-0.5*z*z)
		if score > bestScore {
			bestScore = score
			bestBPM = bpm
		}
	}
	return bestBPM
}

// onsetEnvelope is the mean half-wave rectified frame-to-frame increase of
// the dB-scaled magnitude spectrum, clipped to onsetTopDB below the peak.
func onsetEnvelope(spectra [][]float64) []float64 {
	if len(spectra) < 2 {
		return nil
	}
	db := make([][]float64, len(spectra))
	peak := math.Inf(-1)
	for t, mag := range spectra {
		row := make([]float64, len(mag))
		for k, m := range mag {
			row[k] = 20 * math.Log10(math.Max(m, 1e-10))
		}
		peak = math.Max(peak, floats.Max(row))
		db[t] = row
	}
	floor := peak - onsetTopDB
	for _, row := range db {
		for k, v := range row {
			if v < floor {
				row[k] = floor
			}
		}
	}

	env := make([]float64, len(db))
	for t := 1; t < len(db); t++ {
		sum := 0.0
		for k, v := range db[t] {
			if d := v - db[t-1][k]; d > 0 {
				sum += d
			}
		}
		env[t] = sum / float64(len(db[t]))
	}
	return env
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
