// Package filterbank decomposes multichannel time series into octave spaced
// frequency bands with a bank of Butterworth band-pass filters.
package filterbank

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned for parameters that can't give a valid
// filterbank.
var ErrInvalidArgument = errors.New("filterbank: invalid argument")

const (
	// MinFrequency is the lowest center frequency of a filterbank in Hz.
	MinFrequency = 0.5
	// NyquistClamp scales the Nyquist frequency to the upper edge of the top
	// band.
	NyquistClamp = 0.99999
)

// Band is a pass band in Hz.
type Band struct {
	Low, Center, High float64
}

// OctaveBands returns bandCount bands whose centers are evenly spaced on a
// log2 scale between MinFrequency and floor(fs/2). Neighbouring bands share
// an edge. The upper edge of the top band is set to NyquistClamp fs/2.
func OctaveBands(bandCount int, fs float64) ([]Band, error) {
	if bandCount < 2 {
		return nil, fmt.Errorf("%w: need at least 2 bands, got %v", ErrInvalidArgument, bandCount)
	}
	if !(fs > 0) || math.IsInf(fs, 0) {
		return nil, fmt.Errorf("%w: sampling rate %v", ErrInvalidArgument, fs)
	}
	fmin, fmax := MinFrequency, math.Floor(fs/2)
	if fmax <= fmin {
		return nil, fmt.Errorf("%w: sampling rate %v leaves no band above %v Hz", ErrInvalidArgument, fs, MinFrequency)
	}

	octave := (float64(bandCount) - 0.5) * math.Log10(2) / math.Log10(fmax/fmin)
	lowScale, highScale := math.Pow(2, -1/(2*octave)), math.Pow(2, 1/(2*octave))
	bands := make([]Band, bandCount)
	for k := range bands {
		center := fmin * math.Pow(2, float64(k)/octave)
		bands[k] = Band{
			Low:    center * lowScale,
			Center: center,
			High:   center * highScale,
		}
	}
	bands[bandCount-1].High = fs / 2 * NyquistClamp
	return bands, nil
}
