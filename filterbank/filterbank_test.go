package filterbank

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"gonum.org/v1/gonum/mat"
)

const difTol = 1e-8

func TestOctaveBands(t *testing.T) {
	bands, err := OctaveBands(5, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(bands) != 5 {
		t.Fatalf("got %v bands", len(bands))
	}
	if bands[0].Center != MinFrequency {
		t.Errorf("first center %v, want %v", bands[0].Center, MinFrequency)
	}
	if bands[4].High != 20./2*NyquistClamp {
		t.Errorf("top edge %v, want %v", bands[4].High, 20./2*NyquistClamp)
	}
	for index, band := range bands {
		if !(band.Low < band.Center && band.Center < band.High && band.High < 10) {
			t.Errorf("band %v = %+v not ordered below Nyquist", index, band)
		}
		if index > 0 {
			if !(bands[index-1].Center < band.Center) {
				t.Errorf("centers not increasing at %v", index)
			}
			if math.Abs(bands[index-1].High-band.Low) > difTol {
				t.Errorf("band %v does not share its lower edge: %v != %v", index, band.Low, bands[index-1].High)
			}
		}
	}
	// Top center lands half a band below floor(fs/2)
	octave := 4.5 * math.Log10(2) / math.Log10(20)
	if want := 0.5 * math.Pow(2, 4/octave); math.Abs(bands[4].Center-want) > difTol {
		t.Errorf("top center %v, want %v", bands[4].Center, want)
	}
}

func TestOctaveBandsInvalid(t *testing.T) {
	tests := []struct {
		bands int
		fs    float64
	}{
		{1, 20},
		{0, 20},
		{5, 0},
		{5, -10},
		{5, math.NaN()},
		{5, math.Inf(1)},
		{5, 1.5},
	}
	for _, test := range tests {
		if _, err := OctaveBands(test.bands, test.fs); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("OctaveBands(%v, %v) error = %v", test.bands, test.fs, err)
		}
	}
}

func TestButterworthCoefficients(t *testing.T) {
	tests := []struct {
		order        int
		low, high    float64
		wantB, wantA []float64
	}{
		// scipy.signal.butter(2, (1, 3), btype="band", fs=20)
		{
			2, 1, 3,
			[]float64{0.06745527388907191, 0, -0.13491054777814382, 0, 0.06745527388907191},
			[]float64{1.0, -2.673578905120267, 2.9923618041278957, -1.6745773146352607, 0.41280159809618844},
		},
		// scipy.signal.butter(1, (1, 3), btype="band", fs=20)
		{
			1, 1, 3,
			[]float64{0.24523727525278566, 0, -0.24523727525278566},
			[]float64{1, -1.2840790438404122, 0.5095254494944287},
		},
		// scipy.signal.butter(1, (0.36, 0.7), btype="band", fs=20)
		{
			1, 0.36, 0.7,
			[]float64{0.0507451797518773, 0, -0.0507451797518773},
			[]float64{1, -1.8749268168552407, 0.8985096404962454},
		},
	}
	for _, test := range tests {
		filter, err := Butterworth(test.order, test.low, test.high, 20)
		if err != nil {
			t.Fatal(err)
		}
		if len(filter.Sections) != test.order {
			t.Fatalf("order %v: got %v sections", test.order, len(filter.Sections))
		}
		b, a := filter.Coefficients()
		if len(b) != len(test.wantB) || len(a) != len(test.wantA) {
			t.Fatalf("order %v: got %v and %v coefficients", test.order, len(b), len(a))
		}
		for index := range test.wantB {
			if math.Abs(b[index]-test.wantB[index]) > difTol {
				t.Errorf("order %v: b[%v] = %v, want %v", test.order, index, b[index], test.wantB[index])
			}
			if math.Abs(a[index]-test.wantA[index]) > difTol {
				t.Errorf("order %v: a[%v] = %v, want %v", test.order, index, a[index], test.wantA[index])
			}
		}
	}
}

func TestButterworthResponse(t *testing.T) {
	fs := 20.
	for _, order := range []int{1, 2, 3} {
		filter, err := Butterworth(order, 1, 3, fs)
		if err != nil {
			t.Fatal(err)
		}
		for _, edge := range []float64{1, 3} {
			if gain := cmplx.Abs(filter.Response(edge, fs)); math.Abs(gain-math.Sqrt2/2) > difTol {
				t.Errorf("order %v: |H(%v)| = %v, want 1/sqrt(2)", order, edge, gain)
			}
		}
		// Geometric center of the prewarped edges
		nyquist := fs / 2
		wl := 4 * math.Tan(math.Pi*(1/nyquist)/2)
		wh := 4 * math.Tan(math.Pi*(3/nyquist)/2)
		center := nyquist * 2 / math.Pi * math.Atan(math.Sqrt(wl*wh)/4)
		if gain := cmplx.Abs(filter.Response(center, fs)); math.Abs(gain-1) > difTol {
			t.Errorf("order %v: |H(%v)| = %v, want 1", order, center, gain)
		}
		for _, stop := range []float64{0, nyquist} {
			if gain := cmplx.Abs(filter.Response(stop, fs)); gain > difTol {
				t.Errorf("order %v: |H(%v)| = %v, want 0", order, stop, gain)
			}
		}
		if !filter.Stable() {
			t.Errorf("order %v: filter not stable", order)
		}
	}
}

func TestButterworthInvalid(t *testing.T) {
	tests := []struct {
		order         int
		low, high, fs float64
	}{
		{0, 1, 3, 20},
		{2, 0, 3, 20},
		{2, 3, 1, 20},
		{2, 1, 10, 20},
		{2, 1, 3, math.NaN()},
	}
	for _, test := range tests {
		if _, err := Butterworth(test.order, test.low, test.high, test.fs); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Butterworth(%v, %v, %v, %v) error = %v", test.order, test.low, test.high, test.fs, err)
		}
	}
}

// lfilter runs the expanded transfer function in direct form, a[0] = 1.
func lfilter(b, a, x []float64) []float64 {
	y := make([]float64, len(x))
	for k := range x {
		for i := 0; i < len(b) && i <= k; i++ {
			y[k] += b[i] * x[k-i]
		}
		for i := 1; i < len(a) && i <= k; i++ {
			y[k] -= a[i] * y[k-i]
		}
	}
	return y
}

func TestFilterApply(t *testing.T) {
	// y[k] = x[k] + 0.5 y[k-1]
	filter := Filter{Gain: 1, Sections: []biquad.Coefficients{{B0: 1, A1: -0.5}}}
	x := []float64{1, 0, 0, 0, 1}
	got := filter.Apply(x)
	want := []float64{1, 0.5, 0.25, 0.125, 1.0625}
	for index := range want {
		if math.Abs(got[index]-want[index]) > difTol {
			t.Errorf("y[%v] = %v, want %v", index, got[index], want[index])
		}
	}
	if x[0] != 1 || x[1] != 0 {
		t.Error("Apply modified its input")
	}

	// Input gain
	filter.Gain = 2
	got = filter.Apply(x)
	for index := range want {
		if math.Abs(got[index]-2*want[index]) > difTol {
			t.Errorf("gain y[%v] = %v, want %v", index, got[index], 2*want[index])
		}
	}

	// FIR moving sum
	filter = Filter{Gain: 1, Sections: []biquad.Coefficients{{B0: 1, B1: 1, B2: 1}}}
	got = filter.Apply([]float64{1, 2, 3, 4})
	want = []float64{1, 3, 6, 9}
	for index := range want {
		if math.Abs(got[index]-want[index]) > difTol {
			t.Errorf("fir y[%v] = %v, want %v", index, got[index], want[index])
		}
	}
}

func TestFilterApplyCascade(t *testing.T) {
	fs := 20.
	x := make([]float64, 200)
	for k := range x {
		x[k] = math.Sin(float64(k)/2) + 0.3*math.Cos(float64(k)*1.7)
	}
	for _, order := range []int{1, 2, 4} {
		filter, err := Butterworth(order, 1.5, 4, fs)
		if err != nil {
			t.Fatal(err)
		}
		b, a := filter.Coefficients()
		want := lfilter(b, a, x)
		got := filter.Apply(x)
		for k := range want {
			if math.Abs(got[k]-want[k]) > 1e-9 {
				t.Fatalf("order %v: y[%v] = %v, want %v", order, k, got[k], want[k])
			}
		}
	}
}

func TestFrequencyResponse(t *testing.T) {
	fs := 20.
	filter, err := Butterworth(3, 2, 5, fs)
	if err != nil {
		t.Fatal(err)
	}
	freqs, response := filter.FrequencyResponse(64, fs)
	if len(freqs) != 64 || len(response) != 64 {
		t.Fatalf("got %v frequencies and %v gains", len(freqs), len(response))
	}
	for index, freq := range freqs {
		if want := filter.Response(freq, fs); cmplx.Abs(response[index]-want) > 1e-10 {
			t.Errorf("H(%v) = %v, want %v", freq, response[index], want)
		}
	}
	if freqs[len(freqs)-1] >= fs/2 {
		t.Errorf("last frequency %v not below Nyquist", freqs[len(freqs)-1])
	}
}

func TestFilterPoles(t *testing.T) {
	filter := Filter{Gain: 1, Sections: []biquad.Coefficients{{B0: 1, A1: -1.5, A2: 0.56}}}
	poles := filter.Poles()
	if len(poles) != 2 {
		t.Fatalf("got %v poles", len(poles))
	}
	for _, p := range poles {
		if !(cmplx.Abs(p-0.7) < difTol || cmplx.Abs(p-0.8) < difTol) {
			t.Errorf("unexpected pole %v", p)
		}
	}
	if !filter.Stable() {
		t.Error("filter with poles 0.7 and 0.8 reported unstable")
	}
	filter.Sections = append(filter.Sections, biquad.Coefficients{B0: 1, A1: -1.1})
	if filter.Stable() {
		t.Error("filter with pole 1.1 reported stable")
	}
}

func TestFilterbank(t *testing.T) {
	fs := 20.
	fb, err := New(5, fs, 2)
	if err != nil {
		t.Fatal(err)
	}
	if fb.Len() != 5 {
		t.Fatalf("got %v filters", fb.Len())
	}
	for index, filter := range fb.Filters {
		if !filter.Stable() {
			t.Errorf("band %v unstable", index)
		}
		// The top band touches Nyquist so the edge gain is only close
		band := fb.Bands[index]
		for _, edge := range []float64{band.Low, band.High} {
			if gain := cmplx.Abs(filter.Response(edge, fs)); math.Abs(gain-math.Sqrt2/2) > 1e-6 {
				t.Errorf("band %v |H(%v)| = %v", index, edge, gain)
			}
		}
	}

	steps, channels := 40, 3
	sample := mat.NewDense(steps, channels, nil)
	for k := 0; k < steps; k++ {
		for c := 0; c < channels; c++ {
			sample.Set(k, c, math.Sin(float64(k*(c+1))/3))
		}
	}
	features := fb.Decompose(sample)
	if r, c := features.Dims(); r != steps || c != channels*5 {
		t.Fatalf("features are %vx%v, want %vx%v", r, c, steps, channels*5)
	}
	for c := 0; c < channels; c++ {
		x := mat.Col(nil, c, sample)
		for b, filter := range fb.Filters {
			want := filter.Apply(x)
			for k := range want {
				if features.At(k, c*5+b) != want[k] {
					t.Fatalf("column %v step %v = %v, want channel %v band %v value %v", c*5+b, k, features.At(k, c*5+b), c, b, want[k])
				}
			}
		}
	}

	all := fb.DecomposeAll([]*mat.Dense{sample, sample})
	if len(all) != 2 || !mat.Equal(all[1], features) {
		t.Error("DecomposeAll disagrees with Decompose")
	}
}

func TestOctaveBandsLowSampleRates(t *testing.T) {
	for _, fs := range []float64{2, 2.5, 3, 4, 5, 20} {
		for bandCount := 2; bandCount <= 6; bandCount++ {
			for _, order := range []int{1, 2, 3} {
				fb, err := New(bandCount, fs, order)
				if err != nil {
					t.Fatalf("New(%v, %v, %v): %v", bandCount, fs, order, err)
				}
				for index, band := range fb.Bands {
					if !(band.Low > 0 && band.Low < band.High && band.High < fs/2) {
						t.Errorf("fs %v bands %v: band %v = %+v outside (0, %v)", fs, bandCount, index, band, fs/2)
					}
					if !fb.Filters[index].Stable() {
						t.Errorf("fs %v bands %v order %v: band %v unstable", fs, bandCount, order, index)
					}
				}
			}
		}
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(1, 20, 2); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("band count error = %v", err)
	}
	if _, err := New(5, 20, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("order error = %v", err)
	}
}
