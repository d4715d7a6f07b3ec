package filterbank

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// Design sampling rate of the bilinear transform, fs = 2.
const fs2 = 4.

// Butterworth designs a digital band-pass Butterworth filter of the given
// order for the pass band [low, high] Hz at sampling rate fs. The result is
// a cascade of order second-order sections whose expanded transfer function
// has 2 order + 1 coefficients.
//
// The analog low-pass prototype is shifted to a band-pass around the
// prewarped edges and mapped to the z-plane with the bilinear transform, the
// same route as scipy.signal.butter(order, (low, high), btype="band", fs=fs).
func Butterworth(order int, low, high, fs float64) (*Filter, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: filter order %v", ErrInvalidArgument, order)
	}
	nyquist := fs / 2
	if !(low > 0 && low < high && high < nyquist) {
		return nil, fmt.Errorf("%w: band [%v, %v] Hz outside (0, %v)", ErrInvalidArgument, low, high, nyquist)
	}

	wl := fs2 * math.Tan(math.Pi*(low/nyquist)/2)
	wh := fs2 * math.Tan(math.Pi*(high/nyquist)/2)
	if order == 1 {
		return bandpassSection(wl, wh, fs), nil
	}
	return bandpassCascade(order, wl, wh)
}

// bandpassSection maps the first-order prototype onto the constant skirt
// band-pass biquad. Its center sits at the prewarped geometric mean of the
// edges and its peak gain equals Q, so the input gain is 1/Q.
func bandpassSection(wl, wh, fs float64) *Filter {
	wo := math.Sqrt(wl * wh)
	q := wo / (wh - wl)
	center := fs / math.Pi * math.Atan(wo/fs2)
	return &Filter{
		Gain:     1 / q,
		Sections: []biquad.Coefficients{design.Bandpass(center, q, fs)},
	}
}

// bandpassCascade splits the band-pass poles into conjugate pairs. Each
// section carries one zero at z = 1 and one at z = -1.
func bandpassCascade(order int, wl, wh float64) (*Filter, error) {
	bw := wh - wl
	wo2 := complex(wl*wh, 0)

	// Low-pass to band-pass: every prototype pole splits in two
	poles := make([]complex128, 0, 2*order)
	for k := 0; k < order; k++ {
		m := float64(-order + 1 + 2*k)
		p := -cmplx.Exp(complex(0, math.Pi*m/(2*float64(order)))) * complex(bw/2, 0)
		d := cmplx.Sqrt(p*p - wo2)
		poles = append(poles, p+d, p-d)
	}

	// Bilinear transform, with the gain of the zeros at s = 0 and infinity
	denominator := complex(1, 0)
	for k, p := range poles {
		denominator *= complex(fs2, 0) - p
		poles[k] = (complex(fs2, 0) + p) / (complex(fs2, 0) - p)
	}
	gain := math.Pow(bw, float64(order)) * real(complex(math.Pow(fs2, float64(order)), 0)/denominator)

	sections := make([]biquad.Coefficients, 0, order)
	var reals []float64
	for _, p := range poles {
		switch {
		case math.Abs(imag(p)) <= 1e-12*(1+cmplx.Abs(p)):
			reals = append(reals, real(p))
		case imag(p) > 0:
			sections = append(sections, biquad.Coefficients{B0: 1, B2: -1, A1: -2 * real(p), A2: real(p)*real(p) + imag(p)*imag(p)})
		}
	}
	sort.Float64s(reals)
	for k := 0; k+1 < len(reals); k += 2 {
		sections = append(sections, biquad.Coefficients{B0: 1, B2: -1, A1: -(reals[k] + reals[k+1]), A2: reals[k] * reals[k+1]})
	}
	if len(sections) != order || len(reals)%2 != 0 {
		return nil, fmt.Errorf("filterbank: %v poles do not pair into %v sections", len(poles), order)
	}
	return &Filter{Gain: gain, Sections: sections}, nil
}
