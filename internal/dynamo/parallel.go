package dynamo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ensemble integrates one system from many initial states concurrently.
// Each run is an independent Integrate call with its own Integrator, so no
// observers or metrics are shared between goroutines.
type Ensemble struct {
	stepper  Stepper
	workers  int
	validate bool
}

func NewEnsemble(stepper Stepper, workers int, validateState bool) *Ensemble {
	if workers < 1 {
		workers = 1
	}
	return &Ensemble{stepper: stepper, workers: workers, validate: validateState}
}

func (e *Ensemble) Run(ctx context.Context, sys System, t []float64, initial []State) ([]*Trajectory, error) {
	results := make([]*Trajectory, len(initial))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, y0 := range initial {
		i, y0 := i, y0
		g.Go(func() error {
			var opts []Option
			if e.validate {
				opts = append(opts, WithStateValidation())
			}
			tr, err := New(e.stepper, opts...).Integrate(ctx, sys, t, y0)
			if err != nil {
				return err
			}
			results[i] = tr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
