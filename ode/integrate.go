package ode

import (
	"gonum.org/v1/gonum/mat"
)

// Integrate advances value from t = from to t = to in steps equal
// Runge-Kutta steps.
func (rk RungeKutta) Integrate(from, to float64, steps int, value *mat.VecDense, system DifferentiableSystem) {
	if steps < 1 {
		steps = 1
	}
	h := (to - from) / float64(steps)
	for step := 0; step < steps; step++ {
		t0 := from + float64(step)*h
		rk.Compute(t0, t0+h, value, system)
	}
}
