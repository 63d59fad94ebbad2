package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

func testTrajectory(n int) *dynamo.Trajectory {
	traj := &dynamo.Trajectory{Order: 2}
	for i := 0; i < n; i++ {
		t := float64(i) * 0.1
		traj.Times = append(traj.Times, t)
		traj.States = append(traj.States, dynamo.State{math.Cos(t), -math.Sin(t)})
	}
	return traj
}

func press(v Viewer, keys ...tea.KeyMsg) Viewer {
	for _, k := range keys {
		m, _ := v.Update(k)
		v = m.(Viewer)
	}
	return v
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewerNavigation(t *testing.T) {
	v := NewViewer("test", testTrajectory(50), nil)

	v = press(v, key("left"))
	if v.Cursor() != 0 {
		t.Errorf("cursor moved before first row: %d", v.Cursor())
	}

	v = press(v, key("right"), key("right"))
	if v.Cursor() != 2 {
		t.Errorf("expected cursor 2, got %d", v.Cursor())
	}

	v = press(v, key("pgdown"))
	if v.Cursor() != 7 {
		t.Errorf("expected cursor 7 after page down, got %d", v.Cursor())
	}

	v = press(v, key("end"), key("right"))
	if v.Cursor() != 49 {
		t.Errorf("cursor moved past last row: %d", v.Cursor())
	}

	v = press(v, key("tab"), key("tab"), key("tab"))
	if v.Column() != 1 {
		t.Errorf("expected column 1 after three tabs over 2 components, got %d", v.Column())
	}
}

func TestViewerQuit(t *testing.T) {
	v := NewViewer("test", testTrajectory(3), nil)
	m, cmd := v.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.(Viewer).View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestViewerView(t *testing.T) {
	v := NewViewer("decay run", testTrajectory(20), []string{"x", "v"})
	v = press(v, key("end"))

	out := v.View()
	for _, want := range []string{"decay run", "20/20", "x", "v"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	empty := NewViewer("empty", &dynamo.Trajectory{}, nil)
	if !strings.Contains(empty.View(), "empty trajectory") {
		t.Error("expected empty trajectory notice")
	}
	empty = press(empty, key("right"), key("end"))
	if empty.Cursor() != 0 {
		t.Errorf("cursor on empty trajectory: %d", empty.Cursor())
	}
}

func TestPlotColumns(t *testing.T) {
	traj := testTrajectory(30)
	out := PlotColumns(traj.Times, traj.States, PlotOptions{Width: 40, Height: 5, Labels: []string{"position"}})

	if !strings.Contains(out, "position") || !strings.Contains(out, "y1") {
		t.Errorf("expected captions for both components:\n%s", out)
	}
	if PlotColumns(nil, nil, DefaultPlotOptions()) != "" {
		t.Error("expected empty output for no rows")
	}

	limited := PlotColumns(traj.Times, traj.States, PlotOptions{Width: 40, Height: 5, MaxPlots: 1})
	if strings.Contains(limited, "y1") {
		t.Error("MaxPlots not honoured")
	}
}

func TestColumnSkipsNonFinite(t *testing.T) {
	states := []dynamo.State{{1}, {math.NaN()}, {math.Inf(1)}, {2}}
	got := Column(states, 0)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("unexpected column %v", got)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 5); got != "─────" {
		t.Errorf("unexpected empty sparkline %q", got)
	}
	out := Sparkline([]float64{0, 1, 2, 3}, 4)
	if !strings.ContainsRune(out, '▁') || !strings.ContainsRune(out, '█') {
		t.Errorf("expected lowest and highest bars in %q", out)
	}
}

func TestNextTheme(t *testing.T) {
	if NextTheme("minimal").Name != "cyberpunk" {
		t.Error("theme cycle should wrap")
	}
	if NextTheme("unknown").Name != Themes[0].Name {
		t.Error("unknown theme should reset to first")
	}
}

func TestPlotOverlay(t *testing.T) {
	out := PlotOverlay([][]float64{{3, 2, 1}, {}, {1, 2, 3}}, "two series", PlotOptions{Width: 20, Height: 4})
	if !strings.Contains(out, "two series") {
		t.Errorf("caption missing:\n%s", out)
	}
	if PlotOverlay([][]float64{{}}, "none", DefaultPlotOptions()) != "" {
		t.Error("expected empty output when every series is empty")
	}
}
