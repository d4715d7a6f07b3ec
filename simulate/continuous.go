package simulate

import (
	"fmt"

	"github.com/hammal/slmu/lmu"
	"github.com/hammal/slmu/ode"
	"github.com/hammal/slmu/signal"
	"gonum.org/v1/gonum/mat"
)

// ContinuousDelay integrates the continuous Legendre delay system of kernel
// with the sum of each row of inputs held over one step of length
// kernel.Dt. Every step is split into substeps Runge-Kutta steps of rk. It
// returns the state at the end of every step as a
// [time index][memory dimension]float64 array.
func ContinuousDelay(kernel *lmu.MemoryKernel, inputs [][]float64, substeps int, rk *ode.RungeKutta) ([][]float64, error) {
	model := *kernel.Continuous
	state := mat.NewVecDense(kernel.Order, nil)
	res := make([][]float64, len(inputs))
	for index, input := range inputs {
		if len(input) == 0 {
			return nil, fmt.Errorf("simulate: input %v is empty", index)
		}
		var u float64
		for _, value := range input {
			u += value
		}
		if err := model.WithInput([]func(float64) float64{signal.Constant(u)}); err != nil {
			return nil, err
		}
		from := float64(index) * kernel.Dt
		rk.Integrate(from, from+kernel.Dt, substeps, state, model)
		res[index] = append([]float64(nil), state.RawVector().Data...)
	}
	return res, nil
}
