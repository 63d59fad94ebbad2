package dynamo

import (
	"context"
)

type Integrator struct {
	stepper       Stepper
	observers     []Observer
	metrics       []Metric
	validateState bool
}

type Option func(*Integrator)

func WithObserver(o Observer) Option {
	return func(in *Integrator) { in.observers = append(in.observers, o) }
}

func WithMetric(m Metric) Option {
	return func(in *Integrator) { in.metrics = append(in.metrics, m) }
}

// WithStateValidation makes Integrate fail with ErrInvalidState as soon as a
// row contains NaN or Inf.
func WithStateValidation() Option {
	return func(in *Integrator) { in.validateState = true }
}

func New(stepper Stepper, opts ...Option) *Integrator {
	in := &Integrator{
		stepper:   stepper,
		observers: make([]Observer, 0),
		metrics:   make([]Metric, 0),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

func (in *Integrator) Stepper() Stepper { return in.stepper }

// Integrate solves dy/dt = sys(t, y) from y(t[0]) = y0 and returns one row per
// entry of t. An empty t yields an empty trajectory. On any failure the
// partially built trajectory is discarded.
func (in *Integrator) Integrate(ctx context.Context, sys System, t []float64, y0 State) (*Trajectory, error) {
	order := len(y0)
	steps := len(t)

	result := &Trajectory{
		Times:   make([]float64, steps),
		States:  make([]State, steps),
		Order:   order,
		Metrics: make(map[string]float64),
	}
	copy(result.Times, t)

	if steps == 0 {
		return result, nil
	}
	if err := CheckTimes(t); err != nil {
		return nil, err
	}

	for _, m := range in.metrics {
		m.Reset()
	}

	counted := &countingSystem{sys: sys}

	result.States[0] = y0.Clone()
	in.observe(0, t[0], result.States[0])

	for n := 0; n < steps-1; n++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		h := t[n+1] - t[n]
		next, err := in.stepper.Step(counted, t[n], result.States[n], h)
		if err != nil {
			return nil, &SimulationError{Step: n, Time: t[n], Wrapped: err}
		}
		if err := CheckShape(next, order); err != nil {
			return nil, &SimulationError{Step: n, Time: t[n], Wrapped: err}
		}
		if in.validateState && !next.IsValid() {
			return nil, &SimulationError{Step: n, Time: t[n+1], Wrapped: ErrInvalidState}
		}

		result.States[n+1] = next
		result.Stats.Steps++
		in.observe(n+1, t[n+1], next)
	}

	result.Stats.Evaluations = counted.calls
	for _, m := range in.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (in *Integrator) observe(step int, t float64, y State) {
	for _, m := range in.metrics {
		m.Observe(t, y)
	}
	for _, o := range in.observers {
		o.OnStep(step, t, y)
	}
}

type countingSystem struct {
	sys   System
	calls int
}

func (c *countingSystem) Derive(t float64, y State) (State, error) {
	c.calls++
	return c.sys.Derive(t, y)
}
