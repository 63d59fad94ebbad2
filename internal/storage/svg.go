package storage

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

type SVGOptions struct {
	Width       int
	Height      int
	StrokeColor string
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 600, StrokeColor: "#00ff00"}
}

// TrajectorySVG draws the path traced by columns colX and colY of states.
// Non-finite rows are skipped.
func TrajectorySVG(w io.Writer, states []dynamo.State, colX, colY int, opts SVGOptions) error {
	type point struct{ X, Y float64 }

	points := make([]point, 0, len(states))
	for i, row := range states {
		if colX < 0 || colY < 0 || colX >= len(row) || colY >= len(row) {
			return fmt.Errorf("%w: row %d has %d columns, need %d and %d", dynamo.ErrShape, i, len(row), colX, colY)
		}
		x, y := row[colX], row[colY]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		points = append(points, point{x, y})
	}
	if len(points) < 2 {
		return fmt.Errorf("need at least 2 finite points to draw, have %d", len(points))
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	// 10% padding on each side
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	width, height := float64(opts.Width), float64(opts.Height)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		opts.Width, opts.Height, opts.Width, opts.Height, opts.StrokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * width
		y := height - (p.Y-minY)/rangeY*height
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString("\"/>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "write svg")
}
