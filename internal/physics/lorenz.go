package physics

import "github.com/kandels/se-for-sci-example/internal/dynamo"

type Lorenz struct{ Sigma, Rho, Beta float64 }

func NewLorenz() *Lorenz                     { return &Lorenz{10.0, 28.0, 8.0 / 3.0} }
func (l *Lorenz) Name() string               { return "lorenz" }
func (l *Lorenz) Dim() int                   { return 3 }
func (l *Lorenz) DefaultState() dynamo.State { return dynamo.State{1.0, 1.0, 1.0} }

// Derive calculates the Lorenz attractor derivatives.
func (l *Lorenz) Derive(_ float64, s dynamo.State) (dynamo.State, error) {
	if err := ensureDim(s, 3); err != nil {
		return nil, err
	}
	return dynamo.State{l.Sigma * (s[1] - s[0]), s[0]*(l.Rho-s[2]) - s[1], s[0]*s[1] - l.Beta*s[2]}, nil
}

func (l *Lorenz) Params() map[string]float64 {
	return map[string]float64{"sigma": l.Sigma, "rho": l.Rho, "beta": l.Beta}
}

func (l *Lorenz) SetParam(n string, v float64) error {
	switch n {
	case "sigma":
		l.Sigma = v
	case "rho":
		l.Rho = v
	case "beta":
		l.Beta = v
	default:
		return unknownParam(l.Name(), n)
	}
	return nil
}
