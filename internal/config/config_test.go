package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "decay", cfg.Model)
	assert.Equal(t, "rk4", cfg.Method)
	assert.NoError(t, cfg.Validate())

	ts, err := cfg.TimeGrid()
	require.NoError(t, err)
	assert.Len(t, ts, DefaultSteps+1)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pendulum", "small")
	require.NotNil(t, cfg)
	assert.Equal(t, 0.2, cfg.InitState[0])

	cfg.InitState[0] = 42
	assert.Equal(t, 0.2, Presets["pendulum"]["small"].InitState[0], "preset must not be mutated through a copy")
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("pendulum", "nonexistent"))
	assert.Nil(t, GetPreset("nonexistent", "small"))
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("decay")
	sort.Strings(presets)
	assert.Equal(t, []string{"backward", "reference", "unit"}, presets)
	assert.Nil(t, ListPresets("nonexistent"))
}

func TestAllPresetsValidate(t *testing.T) {
	for model, presets := range Presets {
		for name, cfg := range presets {
			assert.NoError(t, cfg.Validate(), "%s/%s", model, name)
			assert.Equal(t, model, cfg.Model, "%s/%s", model, name)
		}
	}
}

func TestTimeGrid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.T0, cfg.T1, cfg.Steps = 1, 0, 4

	ts, err := cfg.TimeGrid()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.75, 0.5, 0.25, 0}, ts)

	cfg.Times = []float64{0, 0.1, 0.3}
	ts, err = cfg.TimeGrid()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.1, 0.3}, ts)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no model", func(c *Config) { c.Model = "" }},
		{"unknown method", func(c *Config) { c.Method = "rk45" }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"empty interval", func(c *Config) { c.T1 = c.T0 }},
		{"non-monotonic times", func(c *Config) { c.Times = []float64{0, 2, 1} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.Times = []float64{0, 0}
	assert.ErrorIs(t, cfg.Validate(), dynamo.ErrNonMonotonic)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problem.yaml")

	cfg := DefaultConfig()
	cfg.Model = "oscillator"
	cfg.Method = "euler"
	cfg.InitState = []float64{1, 0}
	cfg.Params = map[string]float64{"omega": 2}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: lorenz\nsteps: 500\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lorenz", cfg.Model)
	assert.Equal(t, 500, cfg.Steps)
	assert.Equal(t, DefaultMethod, cfg.Method)
	assert.Equal(t, DefaultT1, cfg.T1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
