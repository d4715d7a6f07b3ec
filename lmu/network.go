package lmu

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Transforms are the connection weights of a memory cell network: input to
// memory, memory to memory and memory to readout. Input and Recurrent come
// from the kernel, Readout is drawn at random.
type Transforms struct {
	// Order x inputDim
	Input *mat.Dense
	// Order x Order
	Recurrent *mat.Dense
	// nClasses x Order
	Readout *mat.Dense
}

// NewTransforms returns the initial connection weights for a network with
// inputDim inputs and nClasses outputs. The readout is Glorot uniform
// initialized from seed so equal seeds give equal weights.
func NewTransforms(kernel *MemoryKernel, inputDim, nClasses int, seed uint64) (*Transforms, error) {
	if inputDim < 1 || nClasses < 1 {
		return nil, fmt.Errorf("%w: inputDim = %v, nClasses = %v", ErrInvalidArgument, inputDim, nClasses)
	}
	return &Transforms{
		Input:     kernel.InputTransform(inputDim),
		Recurrent: mat.DenseCopyOf(kernel.AH),
		Readout:   Glorot(nClasses, kernel.Order, rand.NewSource(seed)),
	}, nil
}

// Glorot returns a (fanOut x fanIn) matrix drawn uniformly from
// [-limit, limit] with limit = sqrt(6 / (fanIn + fanOut)).
func Glorot(fanOut, fanIn int, src rand.Source) *mat.Dense {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}
	data := make([]float64, fanOut*fanIn)
	for index := range data {
		data[index] = dist.Rand()
	}
	return mat.NewDense(fanOut, fanIn, data)
}
