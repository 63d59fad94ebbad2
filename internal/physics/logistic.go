package physics

import (
	"fmt"
	"math"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

// Logistic is y' = r y (1 - y/K) applied elementwise.
type Logistic struct {
	Rate     float64
	Capacity float64
}

func NewLogistic() *Logistic { return &Logistic{Rate: 1.0, Capacity: 10.0} }

func (l *Logistic) Name() string               { return "logistic" }
func (l *Logistic) Dim() int                   { return 1 }
func (l *Logistic) Elementwise() bool          { return true }
func (l *Logistic) DefaultState() dynamo.State { return dynamo.State{0.5} }

func (l *Logistic) Derive(_ float64, y dynamo.State) (dynamo.State, error) {
	dy := make(dynamo.State, len(y))
	for i, v := range y {
		dy[i] = l.Rate * v * (1 - v/l.Capacity)
	}
	return dy, nil
}

func (l *Logistic) Exact(t0 float64, y0 dynamo.State, t float64) dynamo.State {
	g := math.Exp(l.Rate * (t - t0))
	out := make(dynamo.State, len(y0))
	for i, v := range y0 {
		out[i] = l.Capacity * v * g / (l.Capacity + v*(g-1))
	}
	return out
}

func (l *Logistic) Params() map[string]float64 {
	return map[string]float64{"rate": l.Rate, "capacity": l.Capacity}
}

func (l *Logistic) SetParam(name string, value float64) error {
	switch name {
	case "rate":
		l.Rate = value
	case "capacity":
		if value == 0 {
			return fmt.Errorf("%w: capacity must be non-zero", dynamo.ErrParameter)
		}
		l.Capacity = value
	default:
		return unknownParam(l.Name(), name)
	}
	return nil
}
