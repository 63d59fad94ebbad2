package metrics

import (
	"math"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

// MaxError is the largest Euclidean distance between an observed row and the
// closed-form solution through the first observed row.
type MaxError struct {
	name    string
	exact   dynamo.Analytic
	t0      float64
	y0      dynamo.State
	maxErr  float64
	samples int
}

func NewMaxError(exact dynamo.Analytic) *MaxError {
	return &MaxError{name: "max_error", exact: exact}
}

func (m *MaxError) Name() string { return m.name }

func (m *MaxError) Observe(t float64, x dynamo.State) {
	if m.samples == 0 {
		m.t0 = t
		m.y0 = x.Clone()
	}
	m.samples++

	want := m.exact.Exact(m.t0, m.y0, t)
	if len(want) != len(x) {
		m.maxErr = math.Inf(1)
		return
	}
	m.maxErr = math.Max(m.maxErr, x.Sub(want).Norm())
}

func (m *MaxError) Value() float64 { return m.maxErr }

func (m *MaxError) Reset() {
	m.y0 = nil
	m.maxErr = 0
	m.samples = 0
}
