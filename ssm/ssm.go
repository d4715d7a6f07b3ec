// Package ssm holds continuous and discrete time linear state space models
// and the transforms between them.
package ssm

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrDimensionMismatch is returned when system matrices don't agree in size.
var ErrDimensionMismatch = errors.New("ssm: system parameters don't match")

// StateSpaceModel interface has two parts:
//
// 1) The derivative function which returns the differential state evaluated
// at time t and state(t).
//
// 2) The observation y(t) for a state at time t.
type StateSpaceModel interface {
	// This is the derivative of a state space model
	Derivative(t float64, state mat.Vector) mat.Vector
	// This is the observedState
	Observation(t float64, state mat.Vector) mat.Vector
	// Returns the state space order
	StateSpaceOrder() int
	// Returns the observation space order.
	ObservationSpaceOrder() int
	// Returns the input space Order
	InputSpaceOrder() int
}
