package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/kandels/se-for-sci-example/internal/config"
	"github.com/kandels/se-for-sci-example/internal/dynamo"
	"github.com/kandels/se-for-sci-example/internal/integrators"
	"github.com/kandels/se-for-sci-example/internal/physics"
)

type Experiment struct {
	cfg        *config.Config
	model      physics.Model
	method     integrators.Method
	times      []float64
	init       dynamo.State
	integrator *dynamo.Integrator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup resolves the model and step formula, applies parameters and builds
// the integrator. Extra options are passed through to dynamo.New.
func (e *Experiment) Setup(reg *Registry, opts ...dynamo.Option) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	model, err := reg.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(e.cfg.Params) {
		if err := model.SetParam(name, e.cfg.Params[name]); err != nil {
			return err
		}
	}

	method, err := reg.GetMethod(e.cfg.Method)
	if err != nil {
		return err
	}

	times, err := e.cfg.TimeGrid()
	if err != nil {
		return err
	}

	init := model.DefaultState()
	if len(e.cfg.InitState) > 0 {
		init = dynamo.State(e.cfg.InitState).Clone()
	}
	if err := physics.CheckState(model, init); err != nil {
		return err
	}

	for _, m := range reg.DefaultMetrics(model) {
		opts = append(opts, dynamo.WithMetric(m))
	}
	if e.cfg.ValidateState {
		opts = append(opts, dynamo.WithStateValidation())
	}

	e.model = model
	e.method = method
	e.times = times
	e.init = init
	e.integrator = dynamo.New(method.New(), opts...)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Trajectory, error) {
	if e.integrator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.integrator.Integrate(ctx, e.model, e.times, e.init)
}

func (e *Experiment) Config() *config.Config     { return e.cfg }
func (e *Experiment) Model() physics.Model       { return e.model }
func (e *Experiment) Method() integrators.Method { return e.method }
func (e *Experiment) Times() []float64           { return e.times }
func (e *Experiment) InitState() dynamo.State    { return e.init }

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
