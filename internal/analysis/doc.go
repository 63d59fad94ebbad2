// Package analysis provides accuracy and dynamics studies built on the
// fixed-step integrator:
//
//   - [Convergence]: global error at the final time for a sequence of step
//     counts, with the observed order of accuracy between refinements
//   - [ObservedOrder]: order estimate from two error measurements
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//
// # Order Verification
//
// Halving the step of an order-p method divides the global error by about
// 2^p, so a convergence study over steps 10, 20, 40 should report orders
// near 1 for Euler and near 4 for RK4:
//
//	rows, err := analysis.Convergence(ctx, physics.NewDecay(), integrators.NewRK4(), 0, 1, y0, []int{10, 20, 40})
package analysis
