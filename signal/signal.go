package signal

import "gonum.org/v1/gonum/mat"

// Signal holds the signal interface
type Signal interface {
	Value(float64) mat.Vector
}

var _ Signal = VectorFunction{}

// Constant returns u(t) = value for all t.
func Constant(value float64) func(float64) float64 {
	return func(float64) float64 { return value }
}
