// Package viz renders trajectories in the terminal.
//
// [PlotColumns] draws state components against the row index with
// asciigraph. [Viewer] is a Bubble Tea program that steps through a stored
// trajectory one row at a time.
//
// # Key Bindings
//
//	←/→ h/l   - previous/next row
//	PgUp/PgDn - jump 10% of the trajectory
//	Home/End  - first/last row
//	Tab       - next state component
//	T         - cycle color themes
//	Q         - quit
package viz
