package integrators

import (
	"fmt"
	"strings"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

// Info describes a step formula.
type Info struct {
	Name   string
	Stages int
	Order  int
}

// Describer is implemented by every stepper in this package.
type Describer interface {
	Info() Info
}

// Method enumerates the available step formulas.
type Method int

const (
	MethodEuler Method = iota
	MethodEulerInverted
	MethodRK4
)

var methodNames = map[Method]string{
	MethodEuler:         "euler",
	MethodEulerInverted: "euler-inverted",
	MethodRK4:           "rk4",
}

func Methods() []Method {
	return []Method{MethodEuler, MethodEulerInverted, MethodRK4}
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

func ParseMethod(name string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for m, n := range methodNames {
		if n == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownMethod, name)
}

// New returns the stepper for m. Unknown values fall back to RK4.
func (m Method) New() dynamo.Stepper {
	switch m {
	case MethodEuler:
		return NewEuler()
	case MethodEulerInverted:
		return NewInvertedEuler()
	default:
		return NewRK4()
	}
}

// InfoOf reports the Info of s, or a zero Info for foreign steppers.
func InfoOf(s dynamo.Stepper) Info {
	if d, ok := s.(Describer); ok {
		return d.Info()
	}
	return Info{}
}
