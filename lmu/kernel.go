// Package lmu builds the recurrent memory kernel of a Legendre Memory Unit
// whose feedback runs through a leaky (low-pass) synapse.
//
// The continuous Legendre delay system of a given order and window theta is
// discretized with a zero-order hold at step 1/theta. Because the recurrent
// connection is filtered by a synapse with time constant tau, the discrete
// matrices are then corrected so that synapse plus feedback together
// reproduce the discrete delay line:
//
//	AH = (Ad - e^(-dt/tau) I) / (1 - e^(-dt/tau))
//	BH = Bd / (1 - e^(-dt/tau))
package lmu

import (
	"errors"
	"fmt"
	"math"

	"github.com/hammal/slmu/gonumExtensions"
	"github.com/hammal/slmu/ssm"
	"gonum.org/v1/gonum/mat"
)

// MinLeakDenominator is the smallest 1 - e^(-dt/tau) accepted by the leak
// correction.
const MinLeakDenominator = 1e-12

var (
	// ErrInvalidArgument is the parent of all argument validation errors.
	ErrInvalidArgument = errors.New("lmu: invalid argument")
	ErrInvalidOrder    = fmt.Errorf("%w: order must be a positive integer", ErrInvalidArgument)
	ErrInvalidTheta    = fmt.Errorf("%w: theta must be positive and finite", ErrInvalidArgument)
	ErrInvalidTau      = fmt.Errorf("%w: tau must be positive and finite", ErrInvalidArgument)

	// ErrNumericDomain reports a theta, tau combination for which the kernel
	// can't be represented in floating point.
	ErrNumericDomain = errors.New("lmu: numeric domain error")
)

// MemoryKernel holds the discretized and leak corrected recurrence of an
// order dimensional Legendre delay line.
type MemoryKernel struct {
	Order int
	// Window length
	Theta float64
	// Synapse time constant
	Tau float64
	// Discretization step, 1/Theta
	Dt float64
	// Synapse decay per step, e^(-Dt/Tau)
	Leak float64

	// Continuous Legendre delay system
	Continuous *ssm.LinearStateSpaceModel
	// Zero-order-hold discretization of Continuous
	Discrete *ssm.DiscreteStateSpaceModel

	// Leak corrected recurrent matrix (Order x Order)
	AH *mat.Dense
	// Leak corrected input matrix (Order x 1)
	BH *mat.Dense
}

func validate(order int, theta, tau float64) error {
	if order < 1 {
		return fmt.Errorf("%w (order = %v)", ErrInvalidOrder, order)
	}
	if !(theta > 0) || math.IsInf(theta, 0) {
		return fmt.Errorf("%w (theta = %v)", ErrInvalidTheta, theta)
	}
	if !(tau > 0) || math.IsInf(tau, 0) {
		return fmt.Errorf("%w (tau = %v)", ErrInvalidTau, tau)
	}
	return nil
}

// LegendreDelay returns the continuous time Legendre delay system
//
//	A[i][j] = R[i] (-1 if i < j else (-1)^(i-j+1))
//	B[i]    = R[i] (-1)^i
//	C       = ones(1, order), D = 0
//
// with R[i] = (2i + 1) / theta.
func LegendreDelay(order int, theta float64) (*ssm.LinearStateSpaceModel, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w (order = %v)", ErrInvalidOrder, order)
	}
	if !(theta > 0) || math.IsInf(theta, 0) {
		return nil, fmt.Errorf("%w (theta = %v)", ErrInvalidTheta, theta)
	}
	A := mat.NewDense(order, order, nil)
	B := mat.NewDense(order, 1, nil)
	for i := 0; i < order; i++ {
		r := float64(2*i+1) / theta
		for j := 0; j < order; j++ {
			sign := -1.
			if i >= j && (i-j+1)%2 == 0 {
				sign = 1.
			}
			A.Set(i, j, r*sign)
		}
		if i%2 == 0 {
			B.Set(i, 0, r)
		} else {
			B.Set(i, 0, -r)
		}
	}
	return ssm.NewLinearStateSpaceModel(A, B, gonumExtensions.Ones(1, order), mat.NewDense(1, 1, nil))
}

// NewMemoryKernel builds the leak corrected memory kernel. All arguments are
// validated before any matrix is built.
func NewMemoryKernel(order int, theta, tau float64) (*MemoryKernel, error) {
	if err := validate(order, theta, tau); err != nil {
		return nil, err
	}
	dt := 1 / theta
	if math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: dt = 1/theta overflows for theta = %v", ErrNumericDomain, theta)
	}
	// 1 - e^(-dt/tau) without cancellation for large tau
	denominator := -math.Expm1(-dt / tau)
	if !(denominator >= MinLeakDenominator) {
		return nil, fmt.Errorf("%w: 1 - exp(-dt/tau) = %v for dt = %v, tau = %v", ErrNumericDomain, denominator, dt, tau)
	}
	leak := math.Exp(-dt / tau)

	continuous, err := LegendreDelay(order, theta)
	if err != nil {
		return nil, err
	}
	discrete, err := continuous.Discretize(dt, ssm.ZOH)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNumericDomain, err)
	}
	if gonumExtensions.NANORINF(discrete.A) || gonumExtensions.NANORINF(discrete.B) {
		return nil, fmt.Errorf("%w: discretization overflowed for theta = %v", ErrNumericDomain, theta)
	}

	var AH, BH mat.Dense
	AH.Scale(leak, gonumExtensions.Identity(order))
	AH.Sub(discrete.A, &AH)
	AH.Scale(1/denominator, &AH)
	BH.Scale(1/denominator, discrete.B)
	if gonumExtensions.NANORINF(&AH) || gonumExtensions.NANORINF(&BH) {
		return nil, fmt.Errorf("%w: leak correction overflowed for dt = %v, tau = %v", ErrNumericDomain, dt, tau)
	}

	return &MemoryKernel{
		Order:      order,
		Theta:      theta,
		Tau:        tau,
		Dt:         dt,
		Leak:       leak,
		Continuous: continuous,
		Discrete:   discrete,
		AH:         &AH,
		BH:         &BH,
	}, nil
}

// Stable reports whether the discrete delay line the kernel realizes is
// stable.
func (k *MemoryKernel) Stable() bool {
	return k.Discrete.Stable()
}

// InputTransform returns the (Order x inputDim) feed forward transform that
// drives every memory dimension with the sum of all inputs, BH ones(1, inputDim).
func (k *MemoryKernel) InputTransform(inputDim int) *mat.Dense {
	var res mat.Dense
	res.Mul(k.BH, gonumExtensions.Ones(1, inputDim))
	return &res
}
