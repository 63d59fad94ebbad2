package integrators

import (
	"github.com/kandels/se-for-sci-example/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// RK4 is the classical fourth-order Runge-Kutta method.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Info() Info { return Info{Name: "rk4", Stages: 4, Order: 4} }

func (r *RK4) Step(sys dynamo.System, t float64, y dynamo.State, h float64) (dynamo.State, error) {
	n := len(y)
	scratch := make(dynamo.State, n)

	k1, err := r.slope(sys, t, y, h)
	if err != nil {
		return nil, err
	}

	floats.AddScaledTo(scratch, y, 0.5, k1)
	k2, err := r.slope(sys, t+h/2, scratch, h)
	if err != nil {
		return nil, err
	}

	floats.AddScaledTo(scratch, y, 0.5, k2)
	k3, err := r.slope(sys, t+h/2, scratch, h)
	if err != nil {
		return nil, err
	}

	floats.AddTo(scratch, y, k3)
	k4, err := r.slope(sys, t+h, scratch, h)
	if err != nil {
		return nil, err
	}

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = y[i] + 1.0/6.0*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result, nil
}

// slope returns h*f(t, y) in a fresh vector.
func (r *RK4) slope(sys dynamo.System, t float64, y dynamo.State, h float64) (dynamo.State, error) {
	dx, err := sys.Derive(t, y)
	if err != nil {
		return nil, err
	}
	if err := dynamo.CheckShape(dx, len(y)); err != nil {
		return nil, err
	}
	k := make(dynamo.State, len(dx))
	floats.ScaleTo(k, h, dx)
	return k, nil
}
