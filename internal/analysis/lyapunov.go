package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Run two nearby trajectories over the same time grid
// 2. After every interval measure their separation and renormalize it
// 3. λ ≈ mean of ln(|δx|/δ0) per unit time
func LyapunovExponent(ctx context.Context, sys dynamo.System, stepper dynamo.Stepper, x0 dynamo.State, t []float64, perturbation float64) (float64, error) {
	if len(x0) == 0 || len(t) < 2 {
		return 0, nil
	}
	if perturbation <= 0 {
		return 0, fmt.Errorf("perturbation must be positive, got %g", perturbation)
	}
	if err := dynamo.CheckTimes(t); err != nil {
		return 0, err
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation

	sumLog := 0.0
	for n := 0; n < len(t)-1; n++ {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		h := t[n+1] - t[n]
		var err error
		if x, err = stepper.Step(sys, t[n], x, h); err != nil {
			return 0, err
		}
		if xp, err = stepper.Step(sys, t[n], xp, h); err != nil {
			return 0, err
		}

		sep := xp.Sub(x).Norm()
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / perturbation)

		// Renormalize to keep the separation in the linear regime
		for i := range xp {
			xp[i] = x[i] + (xp[i]-x[i])*perturbation/sep
		}
	}

	return sumLog / math.Abs(t[len(t)-1]-t[0]), nil
}
