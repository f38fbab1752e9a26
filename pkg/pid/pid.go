package pid

import "fmt"

type Gains struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

func (g Gains) String() string {
	return fmt.Sprintf("Kp=%g Ki=%g Kd=%g", g.Kp, g.Ki, g.Kd)
}

// Controller holds the state of a discrete PID loop with one sample per call
// to Update.
//
// The integral term uses the sum of the errors *before* the current sample is
// added, so it lags the proportional and derivative terms by one step.  Tuned
// gains depend on this, so don't change it.
type Controller struct {
	Gains

	integral  float64
	prevError float64
}

func New(g Gains) *Controller {
	return &Controller{Gains: g}
}

// Update feeds one error sample and returns the control output.
func (c *Controller) Update(e float64) float64 {
	proportional := c.Kp * e
	integral := c.Ki * c.integral
	derivative := c.Kd * (e - c.prevError)

	c.integral += e
	c.prevError = e

	return proportional + integral + derivative
}

func (c *Controller) Integral() float64 {
	return c.integral
}

func (c *Controller) Reset() {
	c.integral = 0
	c.prevError = 0
}
