package physics

import (
	"fmt"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

// Zero is f(t, y) = 0. Every step formula must leave y unchanged.
type Zero struct {
	N int
}

func NewZero() *Zero { return &Zero{N: 1} }

func (z *Zero) Name() string      { return "zero" }
func (z *Zero) Dim() int          { return z.N }
func (z *Zero) Elementwise() bool { return true }

func (z *Zero) DefaultState() dynamo.State {
	s := make(dynamo.State, z.N)
	for i := range s {
		s[i] = 1.0
	}
	return s
}

func (z *Zero) Derive(_ float64, y dynamo.State) (dynamo.State, error) {
	return make(dynamo.State, len(y)), nil
}

func (z *Zero) Exact(_ float64, y0 dynamo.State, _ float64) dynamo.State {
	return y0.Clone()
}

func (z *Zero) Params() map[string]float64 {
	return map[string]float64{"n": float64(z.N)}
}

func (z *Zero) SetParam(name string, value float64) error {
	if name != "n" {
		return unknownParam(z.Name(), name)
	}
	if value < 0 || value != float64(int(value)) {
		return fmt.Errorf("%w: n must be a non-negative integer, got %g", dynamo.ErrParameter, value)
	}
	z.N = int(value)
	return nil
}
