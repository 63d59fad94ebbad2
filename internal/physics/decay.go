package physics

import (
	"math"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

// Decay is y' = -k y applied elementwise.
type Decay struct {
	Rate float64
}

func NewDecay() *Decay { return &Decay{Rate: 1.0} }

func (d *Decay) Name() string               { return "decay" }
func (d *Decay) Dim() int                   { return 1 }
func (d *Decay) Elementwise() bool          { return true }
func (d *Decay) DefaultState() dynamo.State { return dynamo.State{1.0} }

func (d *Decay) Derive(_ float64, y dynamo.State) (dynamo.State, error) {
	dy := make(dynamo.State, len(y))
	for i, v := range y {
		dy[i] = -d.Rate * v
	}
	return dy, nil
}

func (d *Decay) Exact(t0 float64, y0 dynamo.State, t float64) dynamo.State {
	f := math.Exp(-d.Rate * (t - t0))
	out := make(dynamo.State, len(y0))
	for i, v := range y0 {
		out[i] = v * f
	}
	return out
}

func (d *Decay) Params() map[string]float64 {
	return map[string]float64{"rate": d.Rate}
}

func (d *Decay) SetParam(name string, value float64) error {
	if name != "rate" {
		return unknownParam(d.Name(), name)
	}
	d.Rate = value
	return nil
}
