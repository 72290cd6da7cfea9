package regulator

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/outputs"
	"github.com/domectrl/pidreg/internal/sensors"
	"github.com/domectrl/pidreg/internal/ui"
	"github.com/domectrl/pidreg/internal/util"
	"go.einride.tech/pid"
)

// PidRegulator glues a configured control loop together: on each cycle it
// feeds the smoothed sensor value into the PID controller and applies the
// clamped control signal to the output. The PID math itself is entirely
// delegated to go.einride.tech/pid.
type PidRegulator struct {
	Config configuration.RegulatorConfig `json:"config"`

	controller pid.Controller
	sensor     sensors.Sensor
	output     outputs.Output

	enabled        bool
	lastCycleStart time.Time
	lastInput      float64
	lastOutput     float64
	lastError      float64
	cycleCount     uint64

	mu sync.Mutex
}

func NewPidRegulator(
	config configuration.RegulatorConfig,
	sensor sensors.Sensor,
	output outputs.Output,
) *PidRegulator {
	config = config.WithDefaults()
	return &PidRegulator{
		Config: config,
		controller: pid.Controller{
			Config: pid.ControllerConfig{
				ProportionalGain: *config.Kp,
				IntegralGain:     *config.Ki,
				DerivativeGain:   *config.Kd,
			},
		},
		sensor:     sensor,
		output:     output,
		enabled:    !config.Disabled,
		lastInput:  math.NaN(),
		lastOutput: math.NaN(),
		lastError:  math.NaN(),
	}
}

func (r *PidRegulator) GetId() string {
	return r.Config.ID
}

func (r *PidRegulator) GetConfig() configuration.RegulatorConfig {
	return r.Config
}

func (r *PidRegulator) Cycle() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled {
		return nil
	}

	measured := r.sensor.GetMovingAvg()
	if math.IsNaN(measured) {
		return fmt.Errorf("regulator %s: no sensor value available", r.GetId())
	}

	cycleStart := time.Now()
	// on the very first cycle there is no previous cycle to measure
	// the real sampling interval against
	samplingInterval := r.Config.CycleTime
	if !r.lastCycleStart.IsZero() {
		samplingInterval = cycleStart.Sub(r.lastCycleStart)
	}
	r.lastCycleStart = cycleStart

	r.controller.Update(pid.ControllerInput{
		ReferenceSignal:  r.Config.SetPoint,
		ActualSignal:     measured,
		SamplingInterval: samplingInterval,
	})

	signal := r.controller.State.ControlSignal
	if r.Config.Direction == configuration.DirectionReverse {
		signal = -signal
	}
	value := util.Coerce(signal, r.Config.Min, r.Config.Max)

	err := r.output.Set(value)
	if err != nil {
		return err
	}

	r.lastInput = measured
	r.lastOutput = value
	r.lastError = r.controller.State.ControlError
	r.cycleCount++

	ui.Debug("Regulator %s: input: %.4f, error: %.4f, output: %.4f", r.GetId(), measured, r.lastError, value)
	return nil
}

func (r *PidRegulator) Attributes() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	attr := map[string]interface{}{}
	attr[AttrCycleTime] = r.Config.CycleTime.String()
	attr[AttrKp] = *r.Config.Kp
	attr[AttrKi] = *r.Config.Ki
	attr[AttrKd] = *r.Config.Kd
	attr[AttrSetPoint] = r.Config.SetPoint
	attr[AttrInput] = filterNaN(r.lastInput)
	attr[AttrOutput] = filterNaN(r.lastOutput)
	attr[AttrError] = filterNaN(r.lastError)
	attr[AttrEnable] = r.enabled

	if r.lastCycleStart.IsZero() {
		attr[AttrLastCycleStart] = nil
	} else {
		attr[AttrLastCycleStart] = r.lastCycleStart.Truncate(time.Second)
	}

	return attr
}

func (r *PidRegulator) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

func (r *PidRegulator) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if enabled == r.enabled {
		return
	}

	if enabled {
		r.resumeLocked(r.lastOutput)
	}
	r.enabled = enabled
}

// Resume restores runtime state from a previous daemon run.
func (r *PidRegulator) Resume(enabled bool, input float64, output float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastInput = input
	r.lastOutput = output
	r.resumeLocked(output)
	r.enabled = enabled
}

// resumeLocked re-initializes the control loop so that the first cycle
// produces a control signal close to the given output value, avoiding a
// jump of the actuator (bumpless transfer).
func (r *PidRegulator) resumeLocked(output float64) {
	r.controller.Reset()
	r.lastCycleStart = time.Time{}

	if math.IsNaN(output) {
		return
	}

	ki := *r.Config.Ki
	if ki == 0 {
		return
	}
	signal := output
	if r.Config.Direction == configuration.DirectionReverse {
		signal = -signal
	}
	r.controller.State.ControlErrorIntegral = signal / ki
}

func (r *PidRegulator) LastCycleStart() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastCycleStart
}

func (r *PidRegulator) LastInput() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastInput
}

func (r *PidRegulator) LastOutput() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastOutput
}

func (r *PidRegulator) LastError() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastError
}

func (r *PidRegulator) CycleCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cycleCount
}

// filterNaN maps NaN to nil, everything else passes through unchanged
func filterNaN(value float64) interface{} {
	if math.IsNaN(value) {
		return nil
	}
	return value
}
