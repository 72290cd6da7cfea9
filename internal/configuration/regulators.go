package configuration

import "time"

const (
	// DirectionDirect increases the output when the input is below the setpoint
	DirectionDirect = "direct"
	// DirectionReverse decreases the output when the input is below the setpoint
	DirectionReverse = "reverse"
)

var (
	DefaultKp        = 1.0
	DefaultKi        = 0.01
	DefaultKd        = 0.0
	DefaultCycleTime = 10 * time.Second
)

type RegulatorConfig struct {
	ID string `json:"id"`

	// PID gains, all non-negative. Inverted behaviour is expressed
	// via the direction property, not via negative gains.
	Kp *float64 `json:"kp"`
	Ki *float64 `json:"ki"`
	Kd *float64 `json:"kd"`

	Direction string `json:"direction"`

	// Time between two PID computation cycles. Accepts go duration
	// strings ("10s") as well as clock notation ("00:00:10").
	CycleTime time.Duration `json:"cycleTime"`

	SetPoint float64 `json:"setPoint"`

	// Output limits
	Min float64 `json:"min"`
	Max float64 `json:"max"`

	// Start with the PID computation suspended
	Disabled bool `json:"disabled"`

	Sensor string `json:"sensor"`
	Output string `json:"output"`
}

// WithDefaults returns a copy of this config in which all unset
// properties are replaced by their default values
func (c RegulatorConfig) WithDefaults() RegulatorConfig {
	if c.Kp == nil {
		c.Kp = &DefaultKp
	}
	if c.Ki == nil {
		c.Ki = &DefaultKi
	}
	if c.Kd == nil {
		c.Kd = &DefaultKd
	}
	if len(c.Direction) <= 0 {
		c.Direction = DirectionDirect
	}
	if c.CycleTime <= 0 {
		c.CycleTime = DefaultCycleTime
	}
	return c
}
