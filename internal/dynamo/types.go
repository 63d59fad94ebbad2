package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return floats.Norm(s, 2)
}

// Sub returns s - other. Both vectors must have the same length.
func (s State) Sub(other State) State {
	result := make(State, len(s))
	floats.SubTo(result, s, other)
	return result
}

// System is the right-hand side f(t, y) of dy/dt = f(t, y).
type System interface {
	Derive(t float64, y State) (State, error)
}

// Func adapts an ordinary function to the System interface.
type Func func(t float64, y State) (State, error)

func (f Func) Derive(t float64, y State) (State, error) {
	return f(t, y)
}

// Pure wraps a derivative function that cannot fail.
func Pure(f func(t float64, y State) State) Func {
	return func(t float64, y State) (State, error) {
		return f(t, y), nil
	}
}

// Stepper computes the state at t+h from the state y at t. h is signed and
// negative when integrating backwards in time. Implementations must not keep
// state between calls.
type Stepper interface {
	Step(sys System, t float64, y State, h float64) (State, error)
}

type Hamiltonian interface {
	Energy(y State) float64
}

// Analytic is implemented by systems with a closed-form solution.
type Analytic interface {
	Exact(t0 float64, y0 State, t float64) State
}

type Configurable interface {
	Params() map[string]float64
	SetParam(name string, value float64) error
}

type Observer interface {
	OnStep(step int, t float64, y State)
}

type Metric interface {
	Name() string
	Observe(t float64, y State)
	Value() float64
	Reset()
}

type Statistics struct {
	// Steps is the number of intervals the stepper advanced over.
	Steps int
	// Evaluations counts calls of the derivative function.
	Evaluations int
}

// Trajectory holds one state row per requested time point, in the order of
// the time sequence. Row 0 is the initial state.
type Trajectory struct {
	Times   []float64
	States  []State
	Order   int
	Stats   Statistics
	Metrics map[string]float64
}

func (tr *Trajectory) Len() int { return len(tr.States) }

func (tr *Trajectory) Row(i int) State { return tr.States[i] }

// Final returns the last row, or nil for an empty trajectory.
func (tr *Trajectory) Final() State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

// Column extracts component j of every row.
func (tr *Trajectory) Column(j int) ([]float64, error) {
	if j < 0 || j >= tr.Order {
		return nil, fmt.Errorf("column %d out of range for order %d", j, tr.Order)
	}
	col := make([]float64, len(tr.States))
	for i, row := range tr.States {
		col[i] = row[j]
	}
	return col, nil
}
