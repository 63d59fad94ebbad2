package physics

import "github.com/kandels/se-for-sci-example/internal/dynamo"

// VanDerPol implements the Van der Pol oscillator.
// State: [x, y] where y = dx/dt
// Equations:
//
//	dx/dt = y
//	dy/dt = μ(1 - x²)y - x
type VanDerPol struct {
	Mu float64 // Nonlinearity parameter
}

func NewVanDerPol() *VanDerPol {
	return &VanDerPol{
		Mu: 1.0, // Classic value for limit cycle
	}
}

func (v *VanDerPol) Name() string { return "vanderpol" }
func (v *VanDerPol) Dim() int     { return 2 }

func (v *VanDerPol) Derive(_ float64, state dynamo.State) (dynamo.State, error) {
	if err := ensureDim(state, 2); err != nil {
		return nil, err
	}
	x, y := state[0], state[1]

	dx := y
	dy := v.Mu*(1-x*x)*y - x

	return dynamo.State{dx, dy}, nil
}

func (v *VanDerPol) DefaultState() dynamo.State {
	return dynamo.State{2.0, 0.0}
}

// Params implements dynamo.Configurable
func (v *VanDerPol) Params() map[string]float64 {
	return map[string]float64{
		"mu": v.Mu,
	}
}

// SetParam implements dynamo.Configurable
func (v *VanDerPol) SetParam(name string, value float64) error {
	if name != "mu" {
		return unknownParam(v.Name(), name)
	}
	v.Mu = value
	return nil
}
