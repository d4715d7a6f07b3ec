package dataset

import (
	"fmt"
	"strings"

	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// archive resolves array names to the keys of an open .npz reader.
type archive struct {
	r    *npz.Reader
	keys map[string]string
}

func newArchive(r *npz.Reader) *archive {
	a := &archive{r: r, keys: make(map[string]string)}
	for _, key := range r.Keys() {
		a.keys[strings.TrimSuffix(key, ".npy")] = key
	}
	return a
}

// float64s reads the array name as a flat row-major float64 slice along
// with its shape.
func (a *archive) float64s(name string) ([]float64, []int, error) {
	key, ok := a.keys[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingArray, name)
	}
	hdr := a.r.Header(key)
	if hdr == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingArray, name)
	}
	shape := append([]int(nil), hdr.Descr.Shape...)
	if hdr.Descr.Fortran {
		return nil, nil, fmt.Errorf("dataset: %s is stored in Fortran order", name)
	}

	var data []float64
	switch dtype := hdr.Descr.Type[len(hdr.Descr.Type)-2:]; dtype {
	case "f8":
		if err := a.r.Read(key, &data); err != nil {
			return nil, nil, fmt.Errorf("dataset: read %s: %w", name, err)
		}
	case "f4":
		var raw []float32
		if err := a.r.Read(key, &raw); err != nil {
			return nil, nil, fmt.Errorf("dataset: read %s: %w", name, err)
		}
		data = make([]float64, len(raw))
		for index, value := range raw {
			data[index] = float64(value)
		}
	case "i8":
		var raw []int64
		if err := a.r.Read(key, &raw); err != nil {
			return nil, nil, fmt.Errorf("dataset: read %s: %w", name, err)
		}
		data = make([]float64, len(raw))
		for index, value := range raw {
			data[index] = float64(value)
		}
	case "i4":
		var raw []int32
		if err := a.r.Read(key, &raw); err != nil {
			return nil, nil, fmt.Errorf("dataset: read %s: %w", name, err)
		}
		data = make([]float64, len(raw))
		for index, value := range raw {
			data[index] = float64(value)
		}
	case "u1":
		var raw []uint8
		if err := a.r.Read(key, &raw); err != nil {
			return nil, nil, fmt.Errorf("dataset: read %s: %w", name, err)
		}
		data = make([]float64, len(raw))
		for index, value := range raw {
			data[index] = float64(value)
		}
	default:
		return nil, nil, fmt.Errorf("dataset: %s has unsupported dtype %q", name, hdr.Descr.Type)
	}

	size := 1
	for _, dim := range shape {
		size *= dim
	}
	if size != len(data) {
		return nil, nil, fmt.Errorf("%w: %s has %v values for shape %v", ErrShape, name, len(data), shape)
	}
	return data, shape, nil
}

// inputs reads arr_index as N samples of T by C.
func (a *archive) inputs(index int) ([]*mat.Dense, error) {
	name := fmt.Sprintf("arr_%d", index)
	data, shape, err := a.float64s(name)
	if err != nil {
		return nil, err
	}
	switch len(shape) {
	case 3:
	case 2:
		dims, _, err := a.float64s(fmt.Sprintf("shape_%d", index))
		if err != nil {
			return nil, fmt.Errorf("%w: %s is two dimensional without shape_%d", ErrShape, name, index)
		}
		if len(dims) != 3 || int(dims[0])*int(dims[1])*int(dims[2]) != len(data) {
			return nil, fmt.Errorf("%w: shape_%d = %v does not fit %s %v", ErrShape, index, dims, name, shape)
		}
		shape = []int{int(dims[0]), int(dims[1]), int(dims[2])}
	default:
		return nil, fmt.Errorf("%w: %s has shape %v, want (N, T, C)", ErrShape, name, shape)
	}

	n, t, c := shape[0], shape[1], shape[2]
	if t == 0 || c == 0 {
		return nil, fmt.Errorf("%w: %s has shape %v", ErrShape, name, shape)
	}
	samples := make([]*mat.Dense, n)
	for k := range samples {
		samples[k] = mat.NewDense(t, c, data[k*t*c:(k+1)*t*c])
	}
	return samples, nil
}

// targets reads arr_index as an N by K one-hot matrix.
func (a *archive) targets(index int) (*mat.Dense, error) {
	name := fmt.Sprintf("arr_%d", index)
	data, shape, err := a.float64s(name)
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 || shape[0] == 0 || shape[1] == 0 {
		return nil, fmt.Errorf("%w: %s has shape %v, want (N, K)", ErrShape, name, shape)
	}
	return mat.NewDense(shape[0], shape[1], data), nil
}
