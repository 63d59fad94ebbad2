package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandels/se-for-sci-example/internal/config"
	"github.com/kandels/se-for-sci-example/internal/dynamo"
	"github.com/kandels/se-for-sci-example/internal/integrators"
	"github.com/kandels/se-for-sci-example/internal/physics"
)

func TestRegistryLists(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, []string{"decay", "logistic", "lorenz", "oscillator", "pendulum", "vanderpol", "zero"}, reg.ListModels())
	assert.Equal(t, []string{"euler", "euler-inverted", "rk4"}, reg.ListMethods())
}

func TestRegistryUnknown(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.GetModel("cartpole")
	assert.ErrorIs(t, err, dynamo.ErrUnknownModel)

	_, err = reg.GetMethod("verlet")
	assert.ErrorIs(t, err, dynamo.ErrUnknownMethod)

	m, err := reg.GetMethod("RK4")
	require.NoError(t, err)
	assert.Equal(t, integrators.MethodRK4, m)
}

func TestRegistryReturnsFreshModels(t *testing.T) {
	reg := NewRegistry()

	a, err := reg.GetModel("decay")
	require.NoError(t, err)
	require.NoError(t, a.SetParam("rate", 3))

	b, err := reg.GetModel("decay")
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.Params()["rate"])
}

func TestDefaultMetrics(t *testing.T) {
	reg := NewRegistry()

	names := func(ms []dynamo.Metric) []string {
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.Name()
		}
		return out
	}

	assert.Equal(t, []string{"energy_drift", "max_error", "bounded"}, names(reg.DefaultMetrics(physics.NewOscillator())))
	assert.Equal(t, []string{"energy_drift", "bounded"}, names(reg.DefaultMetrics(physics.NewPendulum())))
	assert.Equal(t, []string{"max_error", "bounded"}, names(reg.DefaultMetrics(physics.NewDecay())))
	assert.Equal(t, []string{"bounded"}, names(reg.DefaultMetrics(physics.NewLorenz())))
}

func TestExperimentReferenceStep(t *testing.T) {
	exp := New(config.GetPreset("decay", "reference"))
	require.NoError(t, exp.Setup(NewRegistry()))

	traj, err := exp.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, traj.Len())
	assert.InDelta(t, 0.9048374, traj.Final()[0], 1e-6)
	assert.Equal(t, 4, traj.Stats.Evaluations)
	assert.Contains(t, traj.Metrics, "max_error")
	assert.Equal(t, 1.0, traj.Metrics["bounded"])
}

func TestExperimentInvertedEulerParity(t *testing.T) {
	cfg := config.GetPreset("decay", "reference")
	cfg.Method = "euler-inverted"

	exp := New(cfg)
	require.NoError(t, exp.Setup(NewRegistry()))

	traj, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.1, traj.Final()[0], 1e-12)
}

func TestExperimentAppliesParams(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model = "oscillator"
	cfg.T1 = math.Pi / 2
	cfg.Steps = 200
	cfg.InitState = []float64{1, 0}
	cfg.Params = map[string]float64{"omega": 2}

	exp := New(cfg)
	require.NoError(t, exp.Setup(NewRegistry()))
	assert.Equal(t, 2.0, exp.Model().Params()["omega"])

	traj, err := exp.Run(context.Background())
	require.NoError(t, err)
	// Half a period at omega=2.
	assert.InDelta(t, -1.0, traj.Final()[0], 1e-6)
	assert.Less(t, traj.Metrics["energy_drift"], 1e-6)
}

func TestExperimentDefaultState(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model = "lorenz"

	exp := New(cfg)
	require.NoError(t, exp.Setup(NewRegistry()))
	assert.Equal(t, physics.NewLorenz().DefaultState(), exp.InitState())
}

func TestExperimentSetupErrors(t *testing.T) {
	reg := NewRegistry()

	cfg := config.DefaultConfig()
	cfg.Model = "nbody"
	assert.ErrorIs(t, New(cfg).Setup(reg), dynamo.ErrUnknownModel)

	cfg = config.DefaultConfig()
	cfg.Params = map[string]float64{"gravity": 9.81}
	assert.ErrorIs(t, New(cfg).Setup(reg), dynamo.ErrParameter)

	cfg = config.DefaultConfig()
	cfg.Method = "midpoint"
	assert.ErrorIs(t, New(cfg).Setup(reg), dynamo.ErrUnknownMethod)
}

func TestExperimentShapeMismatch(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model = "pendulum"
	cfg.InitState = []float64{0.1}

	assert.ErrorIs(t, New(cfg).Setup(NewRegistry()), dynamo.ErrShape)
}

func TestRunBeforeSetup(t *testing.T) {
	_, err := New(config.DefaultConfig()).Run(context.Background())
	assert.Error(t, err)
}
