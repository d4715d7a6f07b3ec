package filterbank

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Filterbank is a bank of band-pass filters over octave spaced bands.
type Filterbank struct {
	SampleRate float64
	Order      int
	Bands      []Band
	Filters    []*Filter
}

// New designs a filterbank of bandCount Butterworth band-pass filters of the
// given order for sampling rate fs.
func New(bandCount int, fs float64, order int) (*Filterbank, error) {
	bands, err := OctaveBands(bandCount, fs)
	if err != nil {
		return nil, err
	}
	filters := make([]*Filter, len(bands))
	for index, band := range bands {
		if filters[index], err = Butterworth(order, band.Low, band.High, fs); err != nil {
			return nil, err
		}
	}
	return &Filterbank{
		SampleRate: fs,
		Order:      order,
		Bands:      bands,
		Filters:    filters,
	}, nil
}

// Len returns the number of bands.
func (fb Filterbank) Len() int {
	return len(fb.Filters)
}

// Decompose filters every channel of a (T by C) sample with every band and
// returns a (T by C*bands) matrix where column c*bands + b holds channel c
// filtered by band b.
func (fb Filterbank) Decompose(sample mat.Matrix) *mat.Dense {
	steps, channels := sample.Dims()
	bands := fb.Len()
	res := mat.NewDense(steps, channels*bands, nil)

	var wg sync.WaitGroup
	wg.Add(channels)
	for channel := 0; channel < channels; channel++ {
		go func(c int) {
			defer wg.Done()
			x := mat.Col(nil, c, sample)
			for b, filter := range fb.Filters {
				res.SetCol(c*bands+b, filter.Apply(x))
			}
		}(channel)
	}
	wg.Wait()
	return res
}

// DecomposeAll applies Decompose to each sample.
func (fb Filterbank) DecomposeAll(samples []*mat.Dense) []*mat.Dense {
	res := make([]*mat.Dense, len(samples))
	for index, sample := range samples {
		res[index] = fb.Decompose(sample)
	}
	return res
}
