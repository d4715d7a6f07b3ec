package ssm

import (
	"fmt"
	"sync"

	"github.com/hammal/slmu/signal"
	"gonum.org/v1/gonum/mat"
)

// LinearStateSpaceModel struct represent the system
//
// x'(t) = A x(t) + B u(t)
//
// y(t) = C x(t) + D u(t)
//
// where u(t) is driven by Input, one VectorFunction per column of B.
type LinearStateSpaceModel struct {
	// State Dynamics
	A mat.Matrix
	// Input matrix
	B mat.Matrix
	// Observation matrix
	C mat.Matrix
	// Feed through matrix
	D mat.Matrix
	// List of input functions
	Input []signal.VectorFunction
}

// NewIntegratorChain returns a linear state space model of an integrator chain
// of size N. The input enters the first integrator with stageGain.
func NewIntegratorChain(N int, stageGain float64) *LinearStateSpaceModel {
	a := make([]float64, N*N)
	b := make([]float64, N)
	c := make([]float64, N)
	stride := N
	b[0] = stageGain
	for row := 0; row < N; row++ {
		c[row] = 1
		for column := 0; column < N; column++ {
			if row == (column + 1) {
				a[row*stride+column] = stageGain
			}
		}
	}
	return &LinearStateSpaceModel{
		A: mat.NewDense(N, N, a),
		B: mat.NewDense(N, 1, b),
		C: mat.NewDense(1, N, c),
		D: mat.NewDense(1, 1, nil),
	}
}

// NewLinearStateSpaceModel creates a new Linear state space model. A nil D is
// replaced by a zero feed through matrix.
func NewLinearStateSpaceModel(A, B, C, D mat.Matrix) (*LinearStateSpaceModel, error) {
	// Check that system parameters match
	m, n := A.Dims()
	mB, nB := B.Dims()
	mC, nC := C.Dims()
	if m != n || mB != m || nC != m {
		return nil, fmt.Errorf("%w: A is %vx%v, B is %vx%v, C is %vx%v", ErrDimensionMismatch, m, n, mB, nB, mC, nC)
	}
	if D == nil {
		D = mat.NewDense(mC, nB, nil)
	}
	if mD, nD := D.Dims(); mD != mC || nD != nB {
		return nil, fmt.Errorf("%w: D is %vx%v, want %vx%v", ErrDimensionMismatch, mD, nD, mC, nB)
	}
	return &LinearStateSpaceModel{A: A, B: B, C: C, D: D}, nil
}

// WithInput binds one scalar input function to each column of B.
func (model *LinearStateSpaceModel) WithInput(inputFunction []func(float64) float64) error {
	if len(inputFunction) != model.InputSpaceOrder() {
		return fmt.Errorf("%w: %v input functions for %v inputs", ErrDimensionMismatch, len(inputFunction), model.InputSpaceOrder())
	}
	var tmpB mat.Dense
	tmpB.CloneFrom(model.B)
	model.Input = make([]signal.VectorFunction, len(inputFunction))
	for index := range inputFunction {
		model.Input[index] = signal.NewInput(inputFunction[index], tmpB.ColView(index))
	}
	return nil
}

// Derivative returns the state derivative.
// x'(t) = Ax(t) + Bu(t)
// where state = x(t) at an arbitrary time t. Furthermore, Bu is the input vector field.
func (model LinearStateSpaceModel) Derivative(t float64, state mat.Vector) mat.Vector {
	// Define variables
	var (
		tmpState mat.VecDense
		tmpInput mat.VecDense
	)

	// Check if state and model parameters match.
	m2, _ := model.A.Dims()
	if m1, _ := state.Dims(); m1 != m2 {
		panic(ErrDimensionMismatch)
	}

	// Build input vector
	// tempInput = B input[0](t) ... + B input[N](t)
	tmpInput = *mat.NewVecDense(m2, nil)
	for _, input := range model.Input {
		tmpInput.AddVec(&tmpInput, input.Bu(t))
	}
	// Compute state transition
	//  A x(t)
	tmpState.MulVec(model.A, state)

	// Add to new state derivative vector and return
	tmpInput.AddVec(&tmpState, &tmpInput)
	return &tmpInput
}

// Observation returns the observed state
// y(t) = C x(t) + D u(t)
// where
// state = x(t) and t is an arbitrary time.
func (model LinearStateSpaceModel) Observation(t float64, state mat.Vector) mat.Vector {
	m2, _ := model.A.Dims()
	if m1, _ := state.Dims(); m1 != m2 {
		panic(ErrDimensionMismatch)
	}
	mC, _ := model.C.Dims()
	res := mat.NewVecDense(mC, nil)
	res.MulVec(model.C, state)
	if model.D != nil && len(model.Input) > 0 {
		u := mat.NewVecDense(len(model.Input), nil)
		for index, input := range model.Input {
			u.SetVec(index, input.U(t))
		}
		var du mat.VecDense
		du.MulVec(model.D, u)
		res.AddVec(res, &du)
	}
	return res
}

// computeStateTransition computes the e^(At) where A is a square matrix and
// t is a scalar.
func computeStateTransition(t float64, A mat.Matrix) *mat.Dense {
	var scaled, res mat.Dense
	scaled.Scale(t, A)
	res.Exp(&scaled)
	return &res
}

// ImpulseResponse computes the impulse response C e^(At) B of the system and
// returns it in an array [numberOfObservations][numberOfInputs][tap at time t]float64
func (model LinearStateSpaceModel) ImpulseResponse(t []float64) [][][]float64 {
	var wg sync.WaitGroup
	numberOfTaps := len(t)
	numberOfObservations, _ := model.C.Dims()
	numberOfInputs := model.InputSpaceOrder()

	// Initialise an 3D array --> (numberOfObservations X numberOfInputs X numberOfTaps)
	res := make([][][]float64, numberOfObservations)
	for obs := range res {
		res[obs] = make([][]float64, numberOfInputs)
		for inp := range res[obs] {
			res[obs][inp] = make([]float64, numberOfTaps)
		}
	}

	wg.Add(numberOfTaps)
	for index, time := range t {
		// Compute the different impulses as a go routine
		go func(i int, t float64) {
			defer wg.Done()
			var tmp2, tmp3 mat.Dense
			// tmp = e^(A * t)
			tmp := computeStateTransition(t, model.A)
			// C e^(A * t) B
			tmp2.Mul(model.C, tmp)
			tmp3.Mul(&tmp2, model.B)
			for obs := range res {
				for inp := range res[obs] {
					res[obs][inp][i] = tmp3.At(obs, inp)
				}
			}
		}(index, time)
	}
	wg.Wait()
	return res
}

func (model LinearStateSpaceModel) StateSpaceOrder() int {
	m, _ := model.A.Dims()
	return m
}

func (model LinearStateSpaceModel) ObservationSpaceOrder() int {
	m, _ := model.C.Dims()
	return m
}

func (model LinearStateSpaceModel) InputSpaceOrder() int {
	_, n := model.B.Dims()
	return n
}
