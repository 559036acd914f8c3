package audio

import (
	"fmt"
	"math"

	"reelsense/internal/services"
)

// Biquad is one second-order IIR section normalised so a0 == 1. First-order
// sections leave B2 and A2 at zero.
type Biquad struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Cascade is a chain of biquad sections applied in order.
type Cascade []Biquad

// Lowpass designs an order-n Butterworth low-pass filter. cutoff is a
// fraction of the Nyquist frequency in (0, 1).
func Lowpass(order int, cutoff float64) (Cascade, error) {
	if err := checkDesign(order, cutoff); err != nil {
		return nil, err
	}
	return butterworth(order, cutoff, false), nil
}

// Highpass designs an order-n Butterworth high-pass filter.
func Highpass(order int, cutoff float64) (Cascade, error) {
	if err := checkDesign(order, cutoff); err != nil {
		return nil, err
	}
	return butterworth(order, cutoff, true), nil
}

// Bandpass designs a band-pass filter as an order-n Butterworth high-pass at
// low followed by an order-n Butterworth low-pass at high.
func Bandpass(order int, low, high float64) (Cascade, error) {
	if low >= high {
		return nil, services.Wrap(services.ErrValidation, "filter", "bandpass", fmt.Sprintf("low edge %.4f must be below high edge %.4f", low, high), nil)
	}
	hp, err := Highpass(order, low)
	if err != nil {
		return nil, err
	}
	lp, err := Lowpass(order, high)
	if err != nil {
		return nil, err
	}
	return append(hp, lp...), nil
}

func checkDesign(order int, cutoff float64) error {
	if order < 1 {
		return services.Wrap(services.ErrValidation, "filter", "design", fmt.Sprintf("order must be positive, got %d", order), nil)
	}
	if cutoff <= 0 || cutoff >= 1 || math.IsNaN(cutoff) {
		return services.Wrap(services.ErrValidation, "filter", "design", fmt.Sprintf("cutoff %.4f outside (0, 1)", cutoff), nil)
	}
	return nil
}

// butterworth builds prewarped bilinear sections. Conjugate pole pairs become
// biquads with Q = 1/(2 cos θ); odd orders add one first-order section.
func butterworth(order int, cutoff float64, highpass bool) Cascade {
	w0 := math.Pi * cutoff
	sections := make(Cascade, 0, (order+1)/2)
	for k := 0; k < order/2; k++ {
		var theta float64
		if order%2 == 0 {
			theta = math.Pi * float64(2*k+1) / float64(2*order)
		} else {
			theta = math.Pi * float64(k+1) / float64(order)
		}
		sections = append(sections, secondOrder(w0, 1/(2*math.Cos(theta)), highpass))
	}
	if order%2 == 1 {
		sections = append(sections, firstOrder(w0, highpass))
	}
	return sections
}

func secondOrder(w0, q float64, highpass bool) Biquad {
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha
	var b0, b1, b2 float64
	if highpass {
		b0 = (1 + cosw) / 2
		b1 = -(1 + cosw)
		b2 = (1 + cosw) / 2
	} else {
		b0 = (1 - cosw) / 2
		b1 = 1 - cosw
		b2 = (1 - cosw) / 2
	}
	return Biquad{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}
}

func firstOrder(w0 float64, highpass bool) Biquad {
	k := math.Tan(w0 / 2)
	a1 := (k - 1) / (k + 1)
	if highpass {
		return Biquad{B0: 1 / (1 + k), B1: -1 / (1 + k), A1: a1}
	}
	return Biquad{B0: k / (1 + k), B1: k / (1 + k), A1: a1}
}

// Filter runs x through every section (transposed direct form II).
func (c Cascade) Filter(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	for _, s := range c {
		var z1, z2 float64
		for i, in := range out {
			y := s.B0*in + z1
			z1 = s.B1*in - s.A1*y + z2
			z2 = s.B2*in - s.A2*y
			out[i] = y
		}
	}
	return out
}

// FiltFilt applies the cascade forward and backward for zero phase. The
// input is extended at both ends by odd reflection to tame edge transients.
func (c Cascade) FiltFilt(x []float64) []float64 {
	n := len(x)
	if n == 0 || len(c) == 0 {
		out := make([]float64, n)
		copy(out, x)
		return out
	}
	pad := 3 * (2*len(c) + 1)
	if pad > n-1 {
		pad = n - 1
	}

	ext := make([]float64, 0, n+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := n - 2; i >= n-1-pad; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}

	fwd := c.Filter(ext)
	reverse(fwd)
	back := c.Filter(fwd)
	reverse(back)
	return back[pad : pad+n]
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// Normalize scales samples so the peak magnitude is 1. Silence is returned
// unchanged.
func Normalize(x []float64) []float64 {
	peak := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	out := make([]float64, len(x))
	if peak == 0 {
		copy(out, x)
		return out
	}
	for i, v := range x {
		out[i] = v / peak
	}
	return out
}

// Mix returns wa*a + wb*b over the shorter of the two inputs.
func Mix(a, b []float64, wa, wb float64) []float64 {
	n := min(len(a), len(b))
	out := make([]float64, n)
	for i := range n {
		out[i] = wa*a[i] + wb*b[i]
	}
	return out
}
