package chassis

import "github.com/pkg/errors"

const (
	DefaultTrackWidthCM   float64 = 10
	DefaultSpeedCMPerSec          = 5
	DefaultBaudRate               = 10
	DefaultSensorLengthCM         = 7
)

// Config holds the physical constants of the car.  Distances are in cm.
type Config struct {
	// Distance between the wheels.
	TrackWidth float64 `yaml:"track_width"`
	// Forward speed in cm/s.
	Speed float64 `yaml:"speed"`
	// Control cycles per second.
	BaudRate float64 `yaml:"baud_rate"`
	// Half-span of the IR sensor array; cross-track errors saturate here.
	SensorLength float64 `yaml:"sensor_length"`
}

func Default() Config {
	return Config{
		TrackWidth:   DefaultTrackWidthCM,
		Speed:        DefaultSpeedCMPerSec,
		BaudRate:     DefaultBaudRate,
		SensorLength: DefaultSensorLengthCM,
	}
}

// SpeedPerCycle is the distance covered in one control cycle.
func (c Config) SpeedPerCycle() float64 {
	return c.Speed / c.BaudRate
}

func (c Config) Validate() error {
	if c.TrackWidth <= 0 {
		return errors.Errorf("track width must be positive, got %v", c.TrackWidth)
	}
	if c.BaudRate <= 0 {
		return errors.Errorf("baud rate must be positive, got %v", c.BaudRate)
	}
	if c.SensorLength < 0 {
		return errors.Errorf("sensor length must not be negative, got %v", c.SensorLength)
	}
	return nil
}
