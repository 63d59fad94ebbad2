// Package dynamo provides the core primitives for fixed-step integration of
// initial-value problems dy/dt = f(t, y).
//
// The package defines the fundamental interfaces and types:
//
//   - [State]: dense vector holding y at one instant
//   - [System]: the derivative function f(t, y) -> y'
//   - [Stepper]: a single-step formula advancing y by a signed step h
//   - [Integrator]: drives a Stepper over a caller-supplied time sequence
//   - [Trajectory]: one State row per requested time point
//
// # Example
//
//	decay := dynamo.Pure(func(t float64, y dynamo.State) dynamo.State {
//	    return dynamo.State{-y[0]}
//	})
//	integ := dynamo.New(integrators.NewRK4())
//	traj, err := integ.Integrate(ctx, decay, dynamo.Linspace(0, 1, 11), dynamo.State{1})
//
// # Thread Safety
//
// An Integrator holds only immutable configuration, so Integrate may be
// called concurrently as long as the attached observers and metrics tolerate
// it. Each call is strictly sequential internally; use [Ensemble] to run
// independent problems in parallel.
package dynamo
