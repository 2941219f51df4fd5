package loudness

import "math"

// biquad is a second order IIR section in direct form I.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// kWeighting returns the two stages of the BS.1770 K-weighting filter for
// the given sample rate: a high shelf modelling the head, then the RLB
// high-pass. Coefficients are derived from the analog prototypes so that
// any sample rate is supported; at 48 kHz they match the tables in the
// recommendation.
func kWeighting(sampleRate float64) (shelf, highpass biquad) {
	const (
		shelfFreq = 1681.974450955533
		shelfGain = 3.999843853973347
		shelfQ    = 0.7071752369554196

		highpassFreq = 38.13547087602444
		highpassQ    = 0.5003270373238773
	)

	k := math.Tan(math.Pi * shelfFreq / sampleRate)
	vh := math.Pow(10, shelfGain/20)
	vb := math.Pow(vh, 0.4996667741545416)
	a0 := 1 + k/shelfQ + k*k
	shelf = biquad{
		b0: (vh + vb*k/shelfQ + k*k) / a0,
		b1: 2 * (k*k - vh) / a0,
		b2: (vh - vb*k/shelfQ + k*k) / a0,
		a1: 2 * (k*k - 1) / a0,
		a2: (1 - k/shelfQ + k*k) / a0,
	}

	k = math.Tan(math.Pi * highpassFreq / sampleRate)
	a0 = 1 + k/highpassQ + k*k
	highpass = biquad{
		b0: 1,
		b1: -2,
		b2: 1,
		a1: 2 * (k*k - 1) / a0,
		a2: (1 - k/highpassQ + k*k) / a0,
	}

	return shelf, highpass
}
