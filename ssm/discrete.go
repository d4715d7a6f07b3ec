package ssm

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// DiscreteStateSpaceModel represent the system
//
// x[k+1] = A x[k] + B u[k]
//
// y[k] = C x[k] + D u[k]
//
// sampled every Dt.
type DiscreteStateSpaceModel struct {
	A, B, C, D *mat.Dense
	// Sampling period
	Dt float64
}

func (model DiscreteStateSpaceModel) StateSpaceOrder() int {
	m, _ := model.A.Dims()
	return m
}

func (model DiscreteStateSpaceModel) ObservationSpaceOrder() int {
	m, _ := model.C.Dims()
	return m
}

func (model DiscreteStateSpaceModel) InputSpaceOrder() int {
	_, n := model.B.Dims()
	return n
}

// Step returns the next state and the current observation for state x and
// input u.
func (model DiscreteStateSpaceModel) Step(x, u mat.Vector) (next, y *mat.VecDense) {
	if x.Len() != model.StateSpaceOrder() || u.Len() != model.InputSpaceOrder() {
		panic(ErrDimensionMismatch)
	}
	var tmp mat.VecDense
	next = mat.NewVecDense(model.StateSpaceOrder(), nil)
	next.MulVec(model.A, x)
	tmp.MulVec(model.B, u)
	next.AddVec(next, &tmp)

	y = mat.NewVecDense(model.ObservationSpaceOrder(), nil)
	y.MulVec(model.C, x)
	tmp.Reset()
	tmp.MulVec(model.D, u)
	y.AddVec(y, &tmp)
	return next, y
}

// Simulate runs the model from the zero state over inputs, a
// [time index][input]float64 array. It returns the states x[1] ... x[N] and
// the observations y[0] ... y[N-1] in the same layout.
func (model DiscreteStateSpaceModel) Simulate(inputs [][]float64) (states, observations [][]float64, err error) {
	order := model.StateSpaceOrder()
	nInputs := model.InputSpaceOrder()
	state := mat.NewVecDense(order, nil)
	states = make([][]float64, len(inputs))
	observations = make([][]float64, len(inputs))
	for index, input := range inputs {
		if len(input) != nInputs {
			return nil, nil, fmt.Errorf("%w: input %v has %v values, want %v", ErrDimensionMismatch, index, len(input), nInputs)
		}
		next, y := model.Step(state, mat.NewVecDense(nInputs, append([]float64(nil), input...)))
		states[index] = append([]float64(nil), next.RawVector().Data...)
		observations[index] = append([]float64(nil), y.RawVector().Data...)
		state = next
	}
	return states, observations, nil
}

// ImpulseResponse returns the states x[1] ... x[n] following a unit impulse
// on input at k = 0, i.e. A^(k) B[:, input] as a [tap][state]float64 array.
func (model DiscreteStateSpaceModel) ImpulseResponse(n, input int) [][]float64 {
	if input < 0 || input >= model.InputSpaceOrder() {
		panic(ErrDimensionMismatch)
	}
	res := make([][]float64, n)
	state := mat.VecDenseCopyOf(model.B.ColView(input))
	for tap := 0; tap < n; tap++ {
		res[tap] = append([]float64(nil), state.RawVector().Data...)
		var next mat.VecDense
		next.MulVec(model.A, state)
		state = &next
	}
	return res
}

// SpectralRadius returns the largest eigenvalue magnitude of A.
func (model DiscreteStateSpaceModel) SpectralRadius() (float64, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(model.A, mat.EigenNone); !ok {
		return 0, fmt.Errorf("ssm: eigen decomposition of state transition failed")
	}
	var radius float64
	for _, value := range eig.Values(nil) {
		if abs := cmplx.Abs(value); abs > radius {
			radius = abs
		}
	}
	return radius, nil
}

// Stable reports whether all eigenvalues of A lie strictly inside the unit
// circle.
func (model DiscreteStateSpaceModel) Stable() bool {
	radius, err := model.SpectralRadius()
	return err == nil && radius < 1
}
