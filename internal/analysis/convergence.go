package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

// Problem is a system with a closed-form solution.
type Problem interface {
	dynamo.System
	dynamo.Analytic
}

type ConvergenceRow struct {
	Steps       int
	H           float64
	Error       float64
	Order       float64 // NaN for the first row
	Evaluations int
}

// ObservedOrder estimates p from errors measured at step sizes differing by
// ratio (coarse/fine).
func ObservedOrder(errCoarse, errFine, ratio float64) float64 {
	if errCoarse <= 0 || errFine <= 0 || ratio <= 1 {
		return math.NaN()
	}
	return math.Log(errCoarse/errFine) / math.Log(ratio)
}

// Convergence integrates p from t0 to t1 once per entry of steps and reports
// the Euclidean error of the final row against the closed form.
func Convergence(ctx context.Context, p Problem, stepper dynamo.Stepper, t0, t1 float64, y0 dynamo.State, steps []int) ([]ConvergenceRow, error) {
	integ := dynamo.New(stepper)
	want := p.Exact(t0, y0, t1)

	rows := make([]ConvergenceRow, 0, len(steps))
	for i, n := range steps {
		if n < 1 {
			return nil, fmt.Errorf("step count must be positive, got %d", n)
		}

		tr, err := integ.Integrate(ctx, p, dynamo.Linspace(t0, t1, n+1), y0)
		if err != nil {
			return nil, fmt.Errorf("steps=%d: %w", n, err)
		}

		row := ConvergenceRow{
			Steps:       n,
			H:           (t1 - t0) / float64(n),
			Error:       tr.Final().Sub(want).Norm(),
			Order:       math.NaN(),
			Evaluations: tr.Stats.Evaluations,
		}
		if i > 0 {
			prev := rows[i-1]
			row.Order = ObservedOrder(prev.Error, row.Error, float64(n)/float64(prev.Steps))
		}
		rows = append(rows, row)
	}

	return rows, nil
}
