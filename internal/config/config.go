package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
	"github.com/kandels/se-for-sci-example/internal/integrators"
)

const (
	DefaultModel  = "decay"
	DefaultMethod = "rk4"
	DefaultT0     = 0.0
	DefaultT1     = 1.0
	DefaultSteps  = 10
)

// Config describes one integration problem. When Times is set it is used as
// the time sequence verbatim and T0, T1 and Steps are ignored.
type Config struct {
	Model         string             `yaml:"model"`
	Method        string             `yaml:"method"`
	T0            float64            `yaml:"t0"`
	T1            float64            `yaml:"t1"`
	Steps         int                `yaml:"steps"`
	Times         []float64          `yaml:"times,omitempty"`
	InitState     []float64          `yaml:"init_state,omitempty"`
	Params        map[string]float64 `yaml:"params,omitempty"`
	ValidateState bool               `yaml:"validate_state"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:         DefaultModel,
		Method:        DefaultMethod,
		T0:            DefaultT0,
		T1:            DefaultT1,
		Steps:         DefaultSteps,
		ValidateState: true,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "write config")
}

// Clone returns a deep copy so presets can be customized safely.
func (c *Config) Clone() *Config {
	out := *c
	if c.Times != nil {
		out.Times = append([]float64(nil), c.Times...)
	}
	if c.InitState != nil {
		out.InitState = append([]float64(nil), c.InitState...)
	}
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must be set")
	}
	if _, err := integrators.ParseMethod(c.Method); err != nil {
		return err
	}
	_, err := c.TimeGrid()
	return err
}

// TimeGrid returns the time sequence the config describes.
func (c *Config) TimeGrid() ([]float64, error) {
	if len(c.Times) > 0 {
		if err := dynamo.CheckTimes(c.Times); err != nil {
			return nil, err
		}
		return append([]float64(nil), c.Times...), nil
	}
	if c.Steps < 1 {
		return nil, fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.T0 == c.T1 {
		return nil, fmt.Errorf("t0 and t1 must differ, both are %g", c.T0)
	}
	ts := dynamo.Linspace(c.T0, c.T1, c.Steps+1)
	if err := dynamo.CheckTimes(ts); err != nil {
		return nil, err
	}
	return ts, nil
}
