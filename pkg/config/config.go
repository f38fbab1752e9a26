package config

import (
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/spatial/r2"
	yaml "gopkg.in/yaml.v2"

	"github.com/tigerbot-team/linefollower/pkg/chassis"
	"github.com/tigerbot-team/linefollower/pkg/sim"
	"github.com/tigerbot-team/linefollower/pkg/telemetry"
)

type Config struct {
	Track     string          `yaml:"track"`
	Chassis   chassis.Config  `yaml:"chassis"`
	Sim       SimConfig       `yaml:"sim"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type SimConfig struct {
	FinishX        float64  `yaml:"finish_x"`
	TimeoutSeconds float64  `yaml:"timeout_seconds"`
	Mode           sim.Mode `yaml:"mode"`
	MaxSteps       int      `yaml:"max_steps"`
	StartX         float64  `yaml:"start_x"`
	StartY         float64  `yaml:"start_y"`
	StartHeading   float64  `yaml:"start_heading"`
}

type TelemetryConfig struct {
	Port           string  `yaml:"port"`
	Baud           int     `yaml:"baud"`
	TimeoutSeconds float64 `yaml:"timeout_seconds"`
	// Number of start and end markers around each frame written by
	// pidsim frames, as the car's firmware pads them.
	StartBuffer int `yaml:"start_buffer"`
	EndBuffer   int `yaml:"end_buffer"`
}

func (t TelemetryConfig) Validate() error {
	if t.StartBuffer < 1 || t.EndBuffer < 1 {
		return errors.Errorf("frames need at least one start and end marker, got %d and %d", t.StartBuffer, t.EndBuffer)
	}
	return nil
}

func Default() Config {
	return Config{
		Track:   "track.csv",
		Chassis: chassis.Default(),
		Sim: SimConfig{
			FinishX:        sim.DefaultFinishX,
			TimeoutSeconds: sim.DefaultTimeout.Seconds(),
			Mode:           sim.RealTime,
			StartX:         0,
			StartY:         -12,
			StartHeading:   math.Pi / 2,
		},
		Telemetry: TelemetryConfig{
			Port:           "/dev/ttyACM0",
			Baud:           9600,
			TimeoutSeconds: telemetry.DefaultTimeout.Seconds(),
			StartBuffer:    3,
			EndBuffer:      3,
		},
	}
}

// Load reads a yaml file over the defaults.  A missing file is not an error;
// the defaults are used.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Warn().Str("path", path).Msg("No config file, using defaults")
		return c, nil
	} else if err != nil {
		return c, errors.Wrap(err, "failed to read config")
	}
	if err := yaml.UnmarshalStrict(raw, &c); err != nil {
		return c, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := c.SimConfig().Validate(); err != nil {
		return c, errors.Wrapf(err, "invalid config %s", path)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return c, errors.Wrapf(err, "invalid config %s", path)
	}
	return c, nil
}

// Dump writes out the config in use.
func Dump(path string, c Config) error {
	cfgBytes, err := yaml.Marshal(&c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return errors.Wrapf(os.WriteFile(path, cfgBytes, 0666), "failed to write %s", path)
}

// SimConfig converts to the simulator's configuration.
func (c Config) SimConfig() sim.Config {
	return sim.Config{
		Chassis:      c.Chassis,
		Start:        r2.Vec{X: c.Sim.StartX, Y: c.Sim.StartY},
		StartHeading: c.Sim.StartHeading,
		FinishX:      c.Sim.FinishX,
		Mode:         c.Sim.Mode,
		Timeout:      time.Duration(c.Sim.TimeoutSeconds * float64(time.Second)),
		MaxSteps:     c.Sim.MaxSteps,
	}
}

func (c Config) TelemetryConfig() telemetry.Config {
	return telemetry.Config{
		Timeout: time.Duration(c.Telemetry.TimeoutSeconds * float64(time.Second)),
	}
}
