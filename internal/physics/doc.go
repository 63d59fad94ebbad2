// Package physics provides model systems for integration runs.
//
// Each model implements [Model], which extends [dynamo.System] with a name,
// a default initial state and runtime parameters:
//
//   - [Decay]: exponential decay y' = -k y (closed form)
//   - [Logistic]: logistic growth (closed form)
//   - [Oscillator]: harmonic oscillator (closed form, conserves energy)
//   - [Pendulum]: damped nonlinear pendulum
//   - [Lorenz]: butterfly attractor
//   - [VanDerPol]: limit cycle oscillator
//   - [Zero]: f = 0, every method leaves y unchanged
//
// Models with a closed-form solution implement [dynamo.Analytic], which the
// metrics and analysis packages use to measure global error:
//
//	m := physics.NewDecay()
//	if a, ok := m.(dynamo.Analytic); ok {
//	    exact := a.Exact(0, y0, 1)
//	}
package physics
