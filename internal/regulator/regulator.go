package regulator

import (
	"fmt"
	"time"

	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/outputs"
	"github.com/domectrl/pidreg/internal/sensors"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Attribute names of the state exposed by a regulator.
const (
	AttrCycleTime      = "cycle_time"
	AttrLastCycleStart = "last_cycle_start"
	AttrKp             = "kp"
	AttrKi             = "ki"
	AttrKd             = "kd"
	AttrSetPoint       = "setpoint"
	AttrInput          = "pid_input"
	AttrOutput         = "pid_output"
	AttrError          = "pid_error"
	AttrEnable         = "pid_enable"
)

var (
	RegulatorMap = cmap.New[Regulator]()
)

type Regulator interface {
	GetId() string

	GetConfig() configuration.RegulatorConfig

	// Cycle runs a single PID computation cycle: it reads the input
	// sensor, advances the control loop and applies the result to the
	// output. A disabled regulator does nothing.
	Cycle() error

	// Attributes returns the current state of this regulator as a map of
	// named attributes. NaN values are reported as nil.
	Attributes() map[string]interface{}

	Enabled() bool
	SetEnabled(enabled bool)

	// Resume restores runtime state from a previous daemon run.
	Resume(enabled bool, input float64, output float64)

	LastCycleStart() time.Time
	LastInput() float64
	LastOutput() float64
	LastError() float64
	CycleCount() uint64
}

func NewRegulator(config configuration.RegulatorConfig) (Regulator, error) {
	sensor, err := sensors.GetSensor(config.Sensor)
	if err != nil {
		return nil, fmt.Errorf("regulator %s: %s", config.ID, err.Error())
	}
	output, err := outputs.GetOutput(config.Output)
	if err != nil {
		return nil, fmt.Errorf("regulator %s: %s", config.ID, err.Error())
	}

	return NewPidRegulator(config, sensor, output), nil
}

func GetRegulator(id string) (Regulator, error) {
	reg, ok := RegulatorMap.Get(id)
	if !ok {
		return nil, fmt.Errorf("no regulator with id found: %s", id)
	}
	return reg, nil
}
