package filterbank

import (
	"math/cmplx"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Filter is a cascade of second-order sections behind a scalar input gain
//
// H(z) = Gain * prod_k (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Filter struct {
	Gain     float64
	Sections []biquad.Coefficients
}

func (f Filter) chain() *biquad.Chain {
	return biquad.NewChain(f.Sections, biquad.WithGain(f.Gain))
}

// Coefficients expands the cascade into a single rational transfer function
// with numerator b and denominator a, highest power of z^-1 last and a[0] = 1.
func (f Filter) Coefficients() (b, a []float64) {
	b = []float64{f.Gain}
	a = []float64{1}
	for _, s := range f.Sections {
		b = convolve(b, []float64{s.B0, s.B1, s.B2})
		a = convolve(a, []float64{1, s.A1, s.A2})
	}
	return b, a
}

func convolve(x, y []float64) []float64 {
	res := make([]float64, len(x)+len(y)-1)
	for i, xi := range x {
		for j, yj := range y {
			res[i+j] += xi * yj
		}
	}
	return res
}

// Apply filters x in a single forward pass through the cascade, starting
// from a zero state. x is left untouched.
func (f Filter) Apply(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	f.chain().ProcessBlock(y)
	return y
}

// Response returns the complex gain at frequency freq Hz for sampling rate fs.
func (f Filter) Response(freq, fs float64) complex128 {
	return f.chain().Response(freq, fs)
}

// FrequencyResponse evaluates the filter at n evenly spaced frequencies in
// [0, fs/2). It returns the frequencies in Hz and the complex gains.
func (f Filter) FrequencyResponse(n int, fs float64) ([]float64, []complex128) {
	freqs := make([]float64, n)
	for k := range freqs {
		freqs[k] = float64(k) * fs / float64(2*n)
	}
	b, a := f.Coefficients()
	if len(b) > 2*n || len(a) > 2*n {
		res := make([]complex128, n)
		for k, freq := range freqs {
			res[k] = f.Response(freq, fs)
		}
		return freqs, res
	}
	fft := fourier.NewFFT(2 * n)
	num := fft.Coefficients(nil, padded(b, 2*n))
	den := fft.Coefficients(nil, padded(a, 2*n))
	res := make([]complex128, n)
	for k := range res {
		res[k] = num[k] / den[k]
	}
	return freqs, res
}

func padded(c []float64, n int) []float64 {
	res := make([]float64, n)
	copy(res, c)
	return res
}

// Poles returns the two z-plane poles of every section, in section order.
func (f Filter) Poles() []complex128 {
	pairs := biquad.PoleZeroPairs(f.Sections)
	res := make([]complex128, 0, 2*len(pairs))
	for _, pair := range pairs {
		res = append(res, pair.Poles[0], pair.Poles[1])
	}
	return res
}

// Stable reports whether all poles lie strictly inside the unit circle.
func (f Filter) Stable() bool {
	for _, p := range f.Poles() {
		if cmplx.IsNaN(p) || cmplx.Abs(p) >= 1 {
			return false
		}
	}
	return true
}
