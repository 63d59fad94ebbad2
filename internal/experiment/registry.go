package experiment

import (
	"fmt"
	"sort"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
	"github.com/kandels/se-for-sci-example/internal/integrators"
	"github.com/kandels/se-for-sci-example/internal/metrics"
	"github.com/kandels/se-for-sci-example/internal/physics"
)

// BoundedThreshold is the magnitude above which a row counts as escaped.
const BoundedThreshold = 1e6

type Registry struct {
	models  map[string]func() physics.Model
	methods map[string]integrators.Method
}

func NewRegistry() *Registry {
	r := &Registry{
		models:  make(map[string]func() physics.Model),
		methods: make(map[string]integrators.Method),
	}

	r.Register("decay", func() physics.Model { return physics.NewDecay() })
	r.Register("logistic", func() physics.Model { return physics.NewLogistic() })
	r.Register("oscillator", func() physics.Model { return physics.NewOscillator() })
	r.Register("pendulum", func() physics.Model { return physics.NewPendulum() })
	r.Register("lorenz", func() physics.Model { return physics.NewLorenz() })
	r.Register("vanderpol", func() physics.Model { return physics.NewVanDerPol() })
	r.Register("zero", func() physics.Model { return physics.NewZero() })

	for _, m := range integrators.Methods() {
		r.methods[m.String()] = m
	}

	return r
}

// Register adds or replaces a model constructor.
func (r *Registry) Register(name string, fn func() physics.Model) {
	r.models[name] = fn
}

func (r *Registry) GetModel(name string) (physics.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownModel, name)
	}
	return fn(), nil
}

func (r *Registry) GetMethod(name string) (integrators.Method, error) {
	m, err := integrators.ParseMethod(name)
	if err != nil {
		return 0, err
	}
	if _, ok := r.methods[m.String()]; !ok {
		return 0, fmt.Errorf("%w: %s", dynamo.ErrUnknownMethod, name)
	}
	return m, nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListMethods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics picks the metrics that make sense for model: energy drift
// for Hamiltonian systems, error against the closed form where one exists,
// and boundedness for everything.
func (r *Registry) DefaultMetrics(model physics.Model) []dynamo.Metric {
	var ms []dynamo.Metric
	if h, ok := model.(dynamo.Hamiltonian); ok {
		ms = append(ms, metrics.NewEnergyDrift(h))
	}
	if a, ok := model.(dynamo.Analytic); ok {
		ms = append(ms, metrics.NewMaxError(a))
	}
	return append(ms, metrics.NewBounded(BoundedThreshold))
}
