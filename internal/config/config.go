package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTickRate      = 60
	DefaultSubsteps      = 8
	DefaultGravity       = 9.8
	DefaultMaxJobs       = 2048
	DefaultMaxBarriers   = 8
	DefaultGridCellSize  = 4.0
	DefaultGridCells     = 4096
	DefaultSleepTime     = 0.5
	DefaultSleepVelocity = 0.05
	DefaultLinearDamp    = 0.1
	DefaultAngularDamp   = 0.1
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Physics Physics `yaml:"physics"`
	Logging Logging `yaml:"logging"`
}

// Physics configures the server, its spaces and the shared job system
type Physics struct {
	TickRate int `yaml:"tick_rate"`
	Substeps int `yaml:"substeps"`
	// Gravity is the magnitude applied by every default area, pointing down
	Gravity float64 `yaml:"gravity"`
	// LinearDamp and AngularDamp are the default area damping values
	LinearDamp  float64 `yaml:"linear_damp"`
	AngularDamp float64 `yaml:"angular_damp"`

	// Workers <= 0 uses one worker per CPU minus one
	Workers     int `yaml:"workers"`
	MaxJobs     int `yaml:"max_jobs"`
	MaxBarriers int `yaml:"max_barriers"`

	GridCellSize  float64 `yaml:"grid_cell_size"`
	GridCells     int     `yaml:"grid_cells"`
	SleepTime     float64 `yaml:"sleep_time"`
	SleepVelocity float64 `yaml:"sleep_velocity"`

	// Debug routes engine assertion failures to the logger
	Debug bool `yaml:"debug"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

func Default() *Config {
	return &Config{
		Physics: DefaultPhysics(),
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

func DefaultPhysics() Physics {
	return Physics{
		TickRate:      DefaultTickRate,
		Substeps:      DefaultSubsteps,
		Gravity:       DefaultGravity,
		LinearDamp:    DefaultLinearDamp,
		AngularDamp:   DefaultAngularDamp,
		MaxJobs:       DefaultMaxJobs,
		MaxBarriers:   DefaultMaxBarriers,
		GridCellSize:  DefaultGridCellSize,
		GridCells:     DefaultGridCells,
		SleepTime:     DefaultSleepTime,
		SleepVelocity: DefaultSleepVelocity,
	}
}

// Load reads a YAML file on top of the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid field at once
func (c *Config) Validate() error {
	err := c.Physics.Validate()

	switch c.Logging.Format {
	case "json", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format))
	}

	return err
}

func (p Physics) Validate() error {
	var err error
	check := func(ok bool, field string, value any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: physics.%s = %v", ErrInvalidConfig, field, value))
		}
	}

	check(p.TickRate > 0, "tick_rate", p.TickRate)
	check(p.Substeps > 0, "substeps", p.Substeps)
	check(p.Gravity >= 0, "gravity", p.Gravity)
	check(p.LinearDamp >= 0, "linear_damp", p.LinearDamp)
	check(p.AngularDamp >= 0, "angular_damp", p.AngularDamp)
	check(p.MaxJobs > 0, "max_jobs", p.MaxJobs)
	check(p.MaxBarriers > 0, "max_barriers", p.MaxBarriers)
	check(p.GridCellSize > 0, "grid_cell_size", p.GridCellSize)
	check(p.GridCells > 0, "grid_cells", p.GridCells)
	check(p.SleepTime >= 0, "sleep_time", p.SleepTime)
	check(p.SleepVelocity >= 0, "sleep_velocity", p.SleepVelocity)

	return err
}

// TimeStep is the fixed delta time of one frame
func (p Physics) TimeStep() float64 {
	return 1.0 / float64(p.TickRate)
}
