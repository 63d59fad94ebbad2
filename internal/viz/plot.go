package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

type PlotOptions struct {
	Width    int
	Height   int
	MaxPlots int
	// Labels names state components; missing entries fall back to "y<i>".
	Labels []string
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 80, Height: 10, MaxPlots: 6}
}

// Column extracts component j of every finite row.
func Column(states []dynamo.State, j int) []float64 {
	out := make([]float64, 0, len(states))
	for _, row := range states {
		if j >= len(row) {
			continue
		}
		if v := row[j]; !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// PlotColumns draws one chart per state component, separated by blank
// lines. Components with no finite values are skipped.
func PlotColumns(times []float64, states []dynamo.State, opts PlotOptions) string {
	if len(states) == 0 {
		return ""
	}

	n := len(states[0])
	if opts.MaxPlots > 0 && n > opts.MaxPlots {
		n = opts.MaxPlots
	}

	span := ""
	if len(times) > 1 {
		span = fmt.Sprintf(", t in [%g, %g]", times[0], times[len(times)-1])
	}

	charts := make([]string, 0, n)
	for j := 0; j < n; j++ {
		data := Column(states, j)
		if len(data) == 0 {
			continue
		}
		charts = append(charts, asciigraph.Plot(data,
			asciigraph.Height(opts.Height),
			asciigraph.Width(opts.Width),
			asciigraph.Caption(label(opts.Labels, j)+span),
		))
	}
	return strings.Join(charts, "\n\n")
}

// PlotOverlay draws several series on one chart, e.g. the same component
// integrated with different methods.
func PlotOverlay(series [][]float64, caption string, opts PlotOptions) string {
	data := make([][]float64, 0, len(series))
	for _, s := range series {
		if len(s) > 0 {
			data = append(data, s)
		}
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	)
}

func label(labels []string, j int) string {
	if j < len(labels) && labels[j] != "" {
		return labels[j]
	}
	return fmt.Sprintf("y%d", j)
}
