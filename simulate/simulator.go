// Package simulate runs a rate based reference model of a memory cell whose
// recurrent and input connections are filtered by a leaky synapse. The
// synapse is integrated exactly with a zero-order hold, so for a leak
// corrected kernel the cell reproduces the discrete delay line.
package simulate

import (
	"fmt"

	"github.com/hammal/slmu/lmu"
	"gonum.org/v1/gonum/mat"
)

// Simulator interface
type Simulator interface {
	GetObservations() [][]float64
	Simulate(inputs [][]float64) error
	Reset()
}

// MemoryCell simulates
//
// x[k+1] = leak x[k] + (1 - leak) (AH x[k] + Input u[k])
//
// where leak = e^(-dt/tau) is the synapse decay over one step.
type MemoryCell struct {
	recurrent    *mat.Dense
	input        *mat.Dense
	leak         float64
	state        *mat.VecDense
	observations [][]float64
}

// NewMemoryCellSimulator returns a zero state simulator for kernel driven by
// inputDim inputs.
func NewMemoryCellSimulator(kernel *lmu.MemoryKernel, inputDim int) *MemoryCell {
	return &MemoryCell{
		recurrent: kernel.AH,
		input:     kernel.InputTransform(inputDim),
		leak:      kernel.Leak,
		state:     mat.NewVecDense(kernel.Order, nil),
	}
}

// GetObservations returns the states recorded by Simulate as a
// [time index][memory dimension]float64 array.
func (sim *MemoryCell) GetObservations() [][]float64 {
	return sim.observations
}

// State returns the current memory state.
func (sim *MemoryCell) State() mat.Vector {
	return sim.state
}

// Reset clears the state and the recorded observations.
func (sim *MemoryCell) Reset() {
	sim.state.Zero()
	sim.observations = nil
}

// Simulate advances the cell once per row of inputs, a
// [time index][input]float64 array, continuing from the current state.
func (sim *MemoryCell) Simulate(inputs [][]float64) error {
	_, nInputs := sim.input.Dims()
	var drive, tmp mat.VecDense
	for index, input := range inputs {
		if len(input) != nInputs {
			return fmt.Errorf("simulate: input %v has %v values, want %v", index, len(input), nInputs)
		}
		// Synaptic drive AH x + Input u
		drive.MulVec(sim.recurrent, sim.state)
		tmp.MulVec(sim.input, mat.NewVecDense(nInputs, append([]float64(nil), input...)))
		drive.AddVec(&drive, &tmp)

		// Low-pass filter the drive
		sim.state.ScaleVec(sim.leak, sim.state)
		sim.state.AddScaledVec(sim.state, 1-sim.leak, &drive)

		sim.observations = append(sim.observations, append([]float64(nil), sim.state.RawVector().Data...))
	}
	return nil
}
