package audio

// Signal is a mono sample buffer with values in [-1, 1].
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the signal length in seconds.
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Empty reports whether the signal carries no samples.
func (s Signal) Empty() bool {
	return len(s.Samples) == 0 || s.SampleRate <= 0
}
