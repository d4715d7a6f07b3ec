package dataset

import (
	"fmt"

	"github.com/hammal/slmu/lmu"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// SaveKernel writes the leak corrected and the discrete memory matrices of
// kernel to the .npz archive at path as A_H, B_H, A_d and B_d.
func SaveKernel(path string, kernel *lmu.MemoryKernel) error {
	w, err := npz.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %q: %w", path, err)
	}
	arrays := []struct {
		name string
		m    *mat.Dense
	}{
		{"A_H", kernel.AH},
		{"B_H", kernel.BH},
		{"A_d", kernel.Discrete.A},
		{"B_d", kernel.Discrete.B},
	}
	for _, array := range arrays {
		if err := w.Write(array.name, array.m); err != nil {
			w.Close()
			return fmt.Errorf("dataset: write %s: %w", array.name, err)
		}
	}
	return w.Close()
}

// LoadKernelMatrices reads back the matrices written by SaveKernel keyed by
// name.
func LoadKernelMatrices(path string) (map[string]*mat.Dense, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer r.Close()
	a := newArchive(r)
	res := make(map[string]*mat.Dense)
	for _, name := range []string{"A_H", "B_H", "A_d", "B_d"} {
		data, shape, err := a.float64s(name)
		if err != nil {
			return nil, err
		}
		if len(shape) != 2 {
			return nil, fmt.Errorf("%w: %s has shape %v", ErrShape, name, shape)
		}
		res[name] = mat.NewDense(shape[0], shape[1], data)
	}
	return res, nil
}
