// Package dataset reads and writes the six-array .npz archives holding the
// train, validation and test splits of a time series classification task.
//
// The archive keys are
//
//	arr_0, arr_1, arr_2: train, validation and test inputs (N by T by C)
//	arr_3, arr_4, arr_5: train, validation and test one-hot targets (N by K)
//
// Inputs stored as N by T*C matrices are accepted when a shape_k array with
// the (N, T, C) dimensions sits next to arr_k.
package dataset

import (
	"errors"
	"fmt"

	"github.com/hammal/slmu/filterbank"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrMissingArray is returned when an archive lacks one of the six arrays.
	ErrMissingArray = errors.New("dataset: missing array")
	// ErrShape is returned for arrays whose shapes don't fit together.
	ErrShape = errors.New("dataset: inconsistent shape")
)

// Split holds the samples of one split. X[n] is a (T by C) time series and
// row n of Y is its one-hot target.
type Split struct {
	X []*mat.Dense
	Y *mat.Dense
}

// Len returns the number of samples.
func (s Split) Len() int {
	return len(s.X)
}

// Labels returns the class index of every sample, the argmax of its row of Y.
func (s Split) Labels() []int {
	if s.Y == nil {
		return nil
	}
	rows, _ := s.Y.Dims()
	labels := make([]int, rows)
	for row := range labels {
		labels[row] = floats.MaxIdx(s.Y.RawRowView(row))
	}
	return labels
}

// Dataset is the train, validation and test splits of one task.
type Dataset struct {
	Train, Val, Test Split
}

func (d *Dataset) splits() []*Split {
	return []*Split{&d.Train, &d.Val, &d.Test}
}

// Timesteps returns T, the length of every time series.
func (d Dataset) Timesteps() int {
	if len(d.Train.X) == 0 {
		return 0
	}
	r, _ := d.Train.X[0].Dims()
	return r
}

// InputDim returns C, the number of channels per time step.
func (d Dataset) InputDim() int {
	if len(d.Train.X) == 0 {
		return 0
	}
	_, c := d.Train.X[0].Dims()
	return c
}

// Classes returns K, the width of the one-hot targets.
func (d Dataset) Classes() int {
	if d.Train.Y == nil {
		return 0
	}
	_, k := d.Train.Y.Dims()
	return k
}

// Bytes returns the memory held by the inputs and targets of all splits.
func (d Dataset) Bytes() uint64 {
	var n int
	for _, split := range d.splits() {
		for _, x := range split.X {
			r, c := x.Dims()
			n += r * c
		}
		if split.Y != nil {
			r, c := split.Y.Dims()
			n += r * c
		}
	}
	return uint64(n) * 8
}

// Decompose returns a new dataset whose inputs are replaced by their
// filterbank decomposition. Targets are shared with d.
func (d Dataset) Decompose(fb *filterbank.Filterbank) *Dataset {
	res := &Dataset{}
	for index, split := range d.splits() {
		*res.splits()[index] = Split{X: fb.DecomposeAll(split.X), Y: split.Y}
	}
	return res
}

// Load reads a dataset from the .npz archive at path.
func Load(path string) (*Dataset, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer r.Close()

	a := newArchive(r)

	res := &Dataset{}
	for index, split := range res.splits() {
		if split.X, err = a.inputs(index); err != nil {
			return nil, err
		}
		if split.Y, err = a.targets(index + 3); err != nil {
			return nil, err
		}
		if split.Len() != rows(split.Y) {
			return nil, fmt.Errorf("%w: arr_%v has %v samples but arr_%v has %v targets", ErrShape, index, split.Len(), index+3, rows(split.Y))
		}
	}
	if err := res.check(); err != nil {
		return nil, err
	}
	return res, nil
}

func rows(m *mat.Dense) int {
	r, _ := m.Dims()
	return r
}

// check verifies that all splits agree on T, C and K.
func (d Dataset) check() error {
	t, c, k := d.Timesteps(), d.InputDim(), d.Classes()
	for index, split := range d.splits() {
		for n, x := range split.X {
			if r, cc := x.Dims(); r != t || cc != c {
				return fmt.Errorf("%w: split %v sample %v is %vx%v, want %vx%v", ErrShape, index, n, r, cc, t, c)
			}
		}
		if _, kk := split.Y.Dims(); kk != k {
			return fmt.Errorf("%w: split %v has %v classes, want %v", ErrShape, index, kk, k)
		}
	}
	return nil
}

// Save writes d to path in the six-array layout. Inputs are stored as
// N by T*C matrices with their dimensions in shape_0 ... shape_2.
func (d Dataset) Save(path string) error {
	w, err := npz.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %q: %w", path, err)
	}
	for index, split := range d.splits() {
		n := split.Len()
		if n == 0 || split.Y == nil {
			w.Close()
			return fmt.Errorf("%w: split %v is empty", ErrShape, index)
		}
		t, c := split.X[0].Dims()
		flat := mat.NewDense(n, t*c, nil)
		for row, x := range split.X {
			if r, cc := x.Dims(); r != t || cc != c {
				w.Close()
				return fmt.Errorf("%w: sample %v is %vx%v, want %vx%v", ErrShape, row, r, cc, t, c)
			}
			for step := 0; step < t; step++ {
				copy(flat.RawRowView(row)[step*c:(step+1)*c], x.RawRowView(step))
			}
		}
		if err := w.Write(fmt.Sprintf("arr_%d", index), flat); err != nil {
			w.Close()
			return fmt.Errorf("dataset: write arr_%d: %w", index, err)
		}
		if err := w.Write(fmt.Sprintf("shape_%d", index), []int64{int64(n), int64(t), int64(c)}); err != nil {
			w.Close()
			return fmt.Errorf("dataset: write shape_%d: %w", index, err)
		}
		if err := w.Write(fmt.Sprintf("arr_%d", index+3), split.Y); err != nil {
			w.Close()
			return fmt.Errorf("dataset: write arr_%d: %w", index+3, err)
		}
	}
	return w.Close()
}
