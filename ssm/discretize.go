package ssm

import (
	"errors"
	"fmt"
	"math"

	"github.com/hammal/slmu/gonumExtensions"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidStep is returned for non-positive or non-finite sampling periods.
var ErrInvalidStep = errors.New("ssm: invalid discretization step")

// Method selects the continuous to discrete transform.
type Method int

const (
	// ZOH holds the input constant over each sampling period.
	ZOH Method = iota
	// Euler is the forward difference, GBT with alpha = 0.
	Euler
	// BackwardDiff is the backward difference, GBT with alpha = 1.
	BackwardDiff
	// Bilinear is the Tustin transform, GBT with alpha = 1/2.
	Bilinear
)

func (m Method) String() string {
	switch m {
	case ZOH:
		return "zoh"
	case Euler:
		return "euler"
	case BackwardDiff:
		return "backward_diff"
	case Bilinear:
		return "bilinear"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Discretize converts the continuous model into a discrete time model with
// sampling period dt.
func (model LinearStateSpaceModel) Discretize(dt float64, method Method) (*DiscreteStateSpaceModel, error) {
	switch method {
	case ZOH:
		return model.zeroOrderHold(dt)
	case Euler:
		return model.DiscretizeGBT(dt, 0)
	case BackwardDiff:
		return model.DiscretizeGBT(dt, 1)
	case Bilinear:
		return model.DiscretizeGBT(dt, 0.5)
	}
	return nil, fmt.Errorf("ssm: unknown discretization method %v", method)
}

func checkStep(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt = %v", ErrInvalidStep, dt)
	}
	return nil
}

// zeroOrderHold computes
//
// Ad = e^(A dt), Bd = int_0^dt e^(A s) ds B
//
// from the exponential of the block matrix [A B; 0 0] dt.
func (model LinearStateSpaceModel) zeroOrderHold(dt float64) (*DiscreteStateSpaceModel, error) {
	if err := checkStep(dt); err != nil {
		return nil, err
	}
	n := model.StateSpaceOrder()
	m := model.InputSpaceOrder()

	block := mat.NewDense(n+m, n+m, nil)
	block.Slice(0, n, 0, n).(*mat.Dense).Copy(model.A)
	block.Slice(0, n, n, n+m).(*mat.Dense).Copy(model.B)
	block.Scale(dt, block)

	var blockExp mat.Dense
	blockExp.Exp(block)

	return &DiscreteStateSpaceModel{
		A:  mat.DenseCopyOf(blockExp.Slice(0, n, 0, n)),
		B:  mat.DenseCopyOf(blockExp.Slice(0, n, n, n+m)),
		C:  mat.DenseCopyOf(model.C),
		D:  mat.DenseCopyOf(model.feedThrough()),
		Dt: dt,
	}, nil
}

// DiscretizeGBT applies the generalized bilinear transform
//
// Ad = (I - alpha dt A)^-1 (I + (1 - alpha) dt A)
// Bd = (I - alpha dt A)^-1 dt B
// Cd = C (I - alpha dt A)^-1
// Dd = D + alpha C Bd
//
// with alpha in [0, 1].
func (model LinearStateSpaceModel) DiscretizeGBT(dt, alpha float64) (*DiscreteStateSpaceModel, error) {
	if err := checkStep(dt); err != nil {
		return nil, err
	}
	if !(alpha >= 0 && alpha <= 1) {
		return nil, fmt.Errorf("ssm: alpha = %v outside [0, 1]", alpha)
	}
	n := model.StateSpaceOrder()
	identity := gonumExtensions.Identity(n)

	var ima, ipa, tmp mat.Dense
	tmp.Scale(alpha*dt, model.A)
	ima.Sub(identity, &tmp)
	tmp.Scale((1-alpha)*dt, model.A)
	ipa.Add(identity, &tmp)

	var Ad, Bd, dtB, CdT, Dd mat.Dense
	if err := Ad.Solve(&ima, &ipa); err != nil {
		return nil, fmt.Errorf("ssm: singular transform at dt = %v: %w", dt, err)
	}
	dtB.Scale(dt, model.B)
	if err := Bd.Solve(&ima, &dtB); err != nil {
		return nil, fmt.Errorf("ssm: singular transform at dt = %v: %w", dt, err)
	}
	if err := CdT.Solve(ima.T(), model.C.T()); err != nil {
		return nil, fmt.Errorf("ssm: singular transform at dt = %v: %w", dt, err)
	}
	Dd.Mul(model.C, &Bd)
	Dd.Scale(alpha, &Dd)
	Dd.Add(&Dd, model.feedThrough())

	return &DiscreteStateSpaceModel{
		A:  &Ad,
		B:  &Bd,
		C:  mat.DenseCopyOf(CdT.T()),
		D:  &Dd,
		Dt: dt,
	}, nil
}

func (model LinearStateSpaceModel) feedThrough() mat.Matrix {
	if model.D != nil {
		return model.D
	}
	return mat.NewDense(model.ObservationSpaceOrder(), model.InputSpaceOrder(), nil)
}
