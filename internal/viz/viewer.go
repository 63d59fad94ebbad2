package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

// Viewer is a Bubble Tea model that pages through a trajectory.
type Viewer struct {
	title   string
	traj    *dynamo.Trajectory
	labels  []string
	cursor  int
	column  int
	theme   Theme
	width   int
	height  int
	quitting bool
}

func NewViewer(title string, traj *dynamo.Trajectory, labels []string) Viewer {
	return Viewer{
		title:  title,
		traj:   traj,
		labels: labels,
		theme:  ThemeCyberpunk,
		width:  80,
		height: 24,
	}
}

func (v Viewer) Cursor() int { return v.cursor }
func (v Viewer) Column() int { return v.column }

func (v Viewer) Init() tea.Cmd { return nil }

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v Viewer) handleKey(msg tea.KeyMsg) (Viewer, tea.Cmd) {
	rows := v.traj.Len()
	page := max(rows/10, 1)

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		v.quitting = true
		return v, tea.Quit
	case "right", "l":
		v.cursor++
	case "left", "h":
		v.cursor--
	case "pgdown", "J":
		v.cursor += page
	case "pgup", "K":
		v.cursor -= page
	case "home", "g":
		v.cursor = 0
	case "end", "G":
		v.cursor = rows - 1
	case "tab":
		if v.traj.Order > 0 {
			v.column = (v.column + 1) % v.traj.Order
		}
	case "t":
		v.theme = NextTheme(v.theme.Name)
	}

	v.cursor = min(max(v.cursor, 0), max(rows-1, 0))
	return v, nil
}

func (v Viewer) View() string {
	if v.quitting {
		return ""
	}

	accent := lipgloss.NewStyle().Foreground(v.theme.Accent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(v.theme.Muted)
	text := lipgloss.NewStyle().Foreground(v.theme.Text)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(v.theme.Primary).Bold(true).Render(v.title))
	b.WriteString("\n\n")

	if v.traj.Len() == 0 {
		b.WriteString(muted.Render("empty trajectory"))
		b.WriteString("\n\n" + KeyHint.Render("q quit"))
		return b.String()
	}

	row := v.traj.Row(v.cursor)
	fmt.Fprintf(&b, "%s %s   %s %s\n",
		muted.Render("row"), text.Render(fmt.Sprintf("%d/%d", v.cursor+1, v.traj.Len())),
		muted.Render("t"), accent.Render(fmt.Sprintf("%.6g", v.traj.Times[v.cursor])))

	for j, val := range row {
		name := fmt.Sprintf("%-8s", label(v.labels, j))
		value := fmt.Sprintf("% .10g", val)
		if j == v.column {
			b.WriteString(accent.Render("▸ "+name) + " " + accent.Render(value) + "\n")
		} else {
			b.WriteString(muted.Render("  "+name) + " " + text.Render(value) + "\n")
		}
	}

	plotWidth := max(v.width-12, 10)
	seen := Column(v.traj.States[:v.cursor+1], v.column)

	b.WriteString("\n")
	if len(seen) > 1 {
		b.WriteString(asciigraph.Plot(seen,
			asciigraph.Height(max(v.height/3, 4)),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(label(v.labels, v.column)),
		))
		b.WriteString("\n")
	}
	b.WriteString(Sparkline(Column(v.traj.States, v.column), plotWidth) + "\n")

	b.WriteString("\n" + KeyHint.Render(fmt.Sprintf("←/→ step  PgUp/PgDn jump  Tab component  T theme (%s)  Q quit", v.theme.Name)))
	return b.String()
}
