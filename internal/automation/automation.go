package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kandels/se-for-sci-example/internal/config"
	"github.com/kandels/se-for-sci-example/internal/dynamo"
	"github.com/kandels/se-for-sci-example/internal/experiment"
	"github.com/kandels/se-for-sci-example/internal/storage"
)

// Scenario defines a scripted sequence of integration runs
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun is one problem of a scenario. Fields a run leaves out take
// the values of config.DefaultConfig.
type ScenarioRun struct {
	config.Config
	SaveAs string
}

func (r *ScenarioRun) UnmarshalYAML(node *yaml.Node) error {
	cfg := config.DefaultConfig()
	if err := node.Decode(cfg); err != nil {
		return err
	}
	var extra struct {
		SaveAs string `yaml:"save_as"`
	}
	if err := node.Decode(&extra); err != nil {
		return err
	}
	r.Config = *cfg
	r.SaveAs = extra.SaveAs
	return nil
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, errors.Wrapf(err, "parse scenario %s", path)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}

	return &scenario, nil
}

type RunResult struct {
	Label      string
	Model      string
	Method     string
	Trajectory *dynamo.Trajectory
	// RunID is set when the run was persisted.
	RunID string
}

// RunScenario executes every run in order and stops at the first failure.
// Runs with save_as are persisted to store when store is not nil.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store) ([]RunResult, error) {
	results := make([]RunResult, 0, len(scenario.Runs))

	for i := range scenario.Runs {
		run := scenario.Runs[i]

		exp := experiment.New(&run.Config)
		if err := exp.Setup(registry); err != nil {
			return results, fmt.Errorf("run %d setup: %w", i+1, err)
		}

		traj, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		res := RunResult{
			Label:      run.SaveAs,
			Model:      run.Model,
			Method:     exp.Method().String(),
			Trajectory: traj,
		}
		if res.Label == "" {
			res.Label = fmt.Sprintf("%s/%s", run.Model, res.Method)
		}

		if store != nil && run.SaveAs != "" {
			meta := storage.NewMetadata(traj)
			meta.Model = run.Model
			meta.Method = res.Method
			meta.Label = run.SaveAs
			meta.Params = exp.Model().Params()
			id, err := store.Save(meta, traj)
			if err != nil {
				return results, fmt.Errorf("run %d save: %w", i+1, err)
			}
			res.RunID = id
		}

		results = append(results, res)
	}

	return results, nil
}

// ParameterSweep integrates Base once per value of ParamName spread evenly
// over [ParamMin, ParamMax].
type ParameterSweep struct {
	Base      config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	FinalState dynamo.State
	Metrics    map[string]float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[sweep.ParamName] = paramVal

		exp := experiment.New(cfg)
		if err := exp.Setup(registry); err != nil {
			return nil, err
		}

		traj, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			FinalState: traj.Final(),
			Metrics:    traj.Metrics,
		})
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial state of Base uniformly within
// ±Perturbation per component.
type MonteCarloConfig struct {
	Base         config.Config
	Perturbation float64
	NumTrials    int
	Workers      int
	Seed         int64
	// Threshold bounds the final state of a stable trial.
	Threshold float64
}

type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Stable     bool
}

// RunMonteCarlo integrates all trials concurrently with dynamo.Ensemble.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", cfg.NumTrials)
	}

	exp := experiment.New(cfg.Base.Clone())
	if err := exp.Setup(registry); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	base := exp.InitState()
	initial := make([]dynamo.State, cfg.NumTrials)
	for trial := range initial {
		s := make(dynamo.State, len(base))
		for i, v := range base {
			s[i] = v + (rng.Float64()-0.5)*2*cfg.Perturbation
		}
		initial[trial] = s
	}

	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = experiment.BoundedThreshold
	}

	ens := dynamo.NewEnsemble(exp.Method().New(), cfg.Workers, false)
	trajs, err := ens.Run(ctx, exp.Model(), exp.Times(), initial)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(trajs))
	for trial, traj := range trajs {
		final := traj.Final()
		stable := true
		for _, v := range final {
			if math.IsNaN(v) || math.Abs(v) > threshold {
				stable = false
				break
			}
		}
		results[trial] = MonteCarloResult{
			TrialID:    trial,
			InitState:  initial[trial],
			FinalState: final,
			Stable:     stable,
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
