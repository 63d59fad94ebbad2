package integrators

import (
	"github.com/kandels/se-for-sci-example/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Euler is the explicit (forward) Euler method: y + h*f(t, y).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Info() Info { return Info{Name: "euler", Stages: 1, Order: 1} }

func (e *Euler) Step(sys dynamo.System, t float64, y dynamo.State, h float64) (dynamo.State, error) {
	return eulerStep(sys, t, y, h)
}

// InvertedEuler advances with y - h*f(t, y). It keeps results comparable
// with tables produced under that sign convention. It does not converge to
// the solution of dy/dt = f.
type InvertedEuler struct{}

func NewInvertedEuler() *InvertedEuler {
	return &InvertedEuler{}
}

func (e *InvertedEuler) Info() Info { return Info{Name: "euler-inverted", Stages: 1, Order: 1} }

func (e *InvertedEuler) Step(sys dynamo.System, t float64, y dynamo.State, h float64) (dynamo.State, error) {
	return eulerStep(sys, t, y, -h)
}

// eulerStep evaluates f at (t, y) and returns y + scale*f. The derivative is
// always taken at the original t, only the update is scaled.
func eulerStep(sys dynamo.System, t float64, y dynamo.State, scale float64) (dynamo.State, error) {
	dx, err := sys.Derive(t, y)
	if err != nil {
		return nil, err
	}
	if err := dynamo.CheckShape(dx, len(y)); err != nil {
		return nil, err
	}
	result := make(dynamo.State, len(y))
	floats.AddScaledTo(result, y, scale, dx)
	return result, nil
}
