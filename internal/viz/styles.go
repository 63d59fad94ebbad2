package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Title       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	Subtle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	MetricValue = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ccff"))
	MetricLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	ErrorText   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	KeyHint     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#666688"))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))


	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// KeyValues renders one "label  value" line per entry, sorted by label.
func KeyValues(values map[string]float64) string {
	keys := make([]string, 0, len(values))
	width := 0
	for k := range values {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		label := MetricLabel.Render(fmt.Sprintf("%-*s", width, k))
		lines[i] = label + "  " + MetricValue.Render(fmt.Sprintf("%.6g", values[k]))
	}
	return strings.Join(lines, "\n")
}

// Sparkline renders values as a one-line bar chart, sampling to fit width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 || math.IsInf(rng, 0) || math.IsNaN(rng) {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		v := values[i*step]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			result.WriteString(SparkLow.Render("?"))
			continue
		}
		norm := (v - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}

	return result.String()
}
