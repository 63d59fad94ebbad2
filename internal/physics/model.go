package physics

import (
	"fmt"
	"sort"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

type Model interface {
	dynamo.System
	dynamo.Configurable
	Name() string
	// Dim is the state length of DefaultState. Elementwise models accept
	// any length.
	Dim() int
	DefaultState() dynamo.State
}

func unknownParam(model, name string) error {
	return fmt.Errorf("%w: %s has no parameter %q", dynamo.ErrParameter, model, name)
}

func ensureDim(y dynamo.State, dim int) error {
	return dynamo.CheckShape(y, dim)
}

// ParamNames returns the parameter names of m in sorted order.
func ParamNames(m dynamo.Configurable) []string {
	params := m.Params()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// elementwise is implemented by models whose derivative is defined for any
// state length.
type elementwise interface {
	Elementwise() bool
}

// CheckState reports a *dynamo.ShapeError when y cannot be a state of m.
func CheckState(m Model, y dynamo.State) error {
	if e, ok := m.(elementwise); ok && e.Elementwise() {
		return nil
	}
	return dynamo.CheckShape(y, m.Dim())
}
