// Package plots renders filterbank and memory kernel diagnostics with
// gonum/plot.
package plots

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/hammal/slmu/filterbank"
	"github.com/hammal/slmu/lmu"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// minGain floors magnitudes before converting to dB.
const minGain = 1e-12

// FilterbankResponse plots the magnitude response in dB of every band of fb
// over n frequencies and saves it to path. The image format follows the
// file extension.
func FilterbankResponse(fb *filterbank.Filterbank, n int, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Filterbank, %v bands, order %v", fb.Len(), fb.Order)
	p.X.Label.Text = "frequency [Hz]"
	p.Y.Label.Text = "gain [dB]"
	p.Y.Min = -60

	lines := make([]interface{}, 0, 2*fb.Len())
	for index, filter := range fb.Filters {
		freqs, response := filter.FrequencyResponse(n, fb.SampleRate)
		pts := make(plotter.XYs, len(freqs))
		for i := range pts {
			pts[i].X = freqs[i]
			pts[i].Y = 20 * math.Log10(math.Max(cmplx.Abs(response[i]), minGain))
		}
		band := fb.Bands[index]
		lines = append(lines, fmt.Sprintf("%.2f-%.2f Hz", band.Low, band.High), pts)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// KernelImpulse plots the response of every memory dimension of the discrete
// kernel to a unit impulse over steps time steps and saves it to path.
func KernelImpulse(kernel *lmu.MemoryKernel, steps int, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Memory impulse response, order %v, theta %v", kernel.Order, kernel.Theta)
	p.X.Label.Text = "time [s]"
	p.Y.Label.Text = "state"

	series := plottify(kernel.Discrete.ImpulseResponse(steps, 0), kernel.Dt)
	lines := make([]interface{}, 0, 2*len(series))
	for index, pts := range series {
		lines = append(lines, fmt.Sprintf("m%d", index), pts)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// plottify turns a [sample][series]float64 array into one line per series
// with samples spaced dt apart.
func plottify(data [][]float64, dt float64) []plotter.XYs {
	if len(data) == 0 {
		return nil
	}
	res := make([]plotter.XYs, len(data[0]))
	for index := range res {
		pts := make(plotter.XYs, len(data))
		for i := range pts {
			pts[i].X = float64(i) * dt
			pts[i].Y = data[i][index]
		}
		res[index] = pts
	}
	return res
}
