package physics

import (
	"fmt"
	"math"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

// Oscillator is the harmonic oscillator x'' = -omega^2 x.
// State: [x, v].
type Oscillator struct {
	Omega float64
}

func NewOscillator() *Oscillator { return &Oscillator{Omega: 1.0} }

func (o *Oscillator) Name() string               { return "oscillator" }
func (o *Oscillator) Dim() int                   { return 2 }
func (o *Oscillator) DefaultState() dynamo.State { return dynamo.State{1.0, 0.0} }

func (o *Oscillator) Derive(_ float64, y dynamo.State) (dynamo.State, error) {
	if err := ensureDim(y, 2); err != nil {
		return nil, err
	}
	return dynamo.State{y[1], -o.Omega * o.Omega * y[0]}, nil
}

func (o *Oscillator) Exact(t0 float64, y0 dynamo.State, t float64) dynamo.State {
	s, c := math.Sincos(o.Omega * (t - t0))
	x0, v0 := y0[0], y0[1]
	return dynamo.State{
		x0*c + v0/o.Omega*s,
		-x0*o.Omega*s + v0*c,
	}
}

func (o *Oscillator) Energy(y dynamo.State) float64 {
	return 0.5 * (y[1]*y[1] + o.Omega*o.Omega*y[0]*y[0])
}

func (o *Oscillator) Params() map[string]float64 {
	return map[string]float64{"omega": o.Omega}
}

func (o *Oscillator) SetParam(name string, value float64) error {
	if name != "omega" {
		return unknownParam(o.Name(), name)
	}
	if value <= 0 {
		return fmt.Errorf("%w: omega must be positive, got %g", dynamo.ErrParameter, value)
	}
	o.Omega = value
	return nil
}
