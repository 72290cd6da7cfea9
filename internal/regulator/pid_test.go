package regulator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/sensors"
	"github.com/stretchr/testify/assert"
)

type mockOutput struct {
	config  configuration.OutputConfig
	values  []float64
	failing bool
}

func (o *mockOutput) GetId() string {
	return o.config.ID
}

func (o *mockOutput) GetConfig() configuration.OutputConfig {
	return o.config
}

func (o *mockOutput) Set(value float64) error {
	if o.failing {
		return errors.New("actuator unreachable")
	}
	o.values = append(o.values, value)
	return nil
}

func (o *mockOutput) GetLast() float64 {
	if len(o.values) <= 0 {
		return 0
	}
	return o.values[len(o.values)-1]
}

// helper function to create a regulator configuration
func createRegulatorConfig(
	id string,
	kp float64,
	ki float64,
	kd float64,
	direction string,
	setPoint float64,
	min float64,
	max float64,
) configuration.RegulatorConfig {
	return configuration.RegulatorConfig{
		ID:        id,
		Kp:        &kp,
		Ki:        &ki,
		Kd:        &kd,
		Direction: direction,
		CycleTime: time.Second,
		SetPoint:  setPoint,
		Min:       min,
		Max:       max,
		Sensor:    "sensor",
		Output:    "output",
	}
}

func TestAttributesBeforeFirstCycle(t *testing.T) {
	// GIVEN
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 4}
	output := &mockOutput{}
	config := createRegulatorConfig("regulator", 1, 0, 0, configuration.DirectionDirect, 10, 0, 100)

	// WHEN
	reg := NewPidRegulator(config, sensor, output)
	attributes := reg.Attributes()

	// THEN
	assert.Nil(t, attributes[AttrInput])
	assert.Nil(t, attributes[AttrOutput])
	assert.Nil(t, attributes[AttrError])
	assert.Nil(t, attributes[AttrLastCycleStart])
	assert.Equal(t, true, attributes[AttrEnable])
	assert.Equal(t, 1.0, attributes[AttrKp])
	assert.Equal(t, 0.0, attributes[AttrKi])
	assert.Equal(t, 0.0, attributes[AttrKd])
	assert.Equal(t, 10.0, attributes[AttrSetPoint])
	assert.Equal(t, "1s", attributes[AttrCycleTime])
}

func TestCycleProportionalBelowSetPoint(t *testing.T) {
	// GIVEN
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 4}
	output := &mockOutput{}
	config := createRegulatorConfig("regulator", 1, 0, 0, configuration.DirectionDirect, 10, 0, 100)
	reg := NewPidRegulator(config, sensor, output)

	// WHEN
	err := reg.Cycle()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, []float64{6.0}, output.values)
	assert.Equal(t, 4.0, reg.LastInput())
	assert.Equal(t, 6.0, reg.LastOutput())
	assert.Equal(t, 6.0, reg.LastError())
	assert.Equal(t, uint64(1), reg.CycleCount())
}

func TestCycleProportionalAboveSetPoint(t *testing.T) {
	// GIVEN
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 15}
	output := &mockOutput{}
	config := createRegulatorConfig("regulator", 1, 0, 0, configuration.DirectionDirect, 10, 0, 100)
	reg := NewPidRegulator(config, sensor, output)

	// WHEN
	err := reg.Cycle()

	// THEN
	assert.NoError(t, err)
	// control signal is negative, clamped to the lower output limit
	assert.Equal(t, []float64{0.0}, output.values)
}

func TestCycleReverseDirection(t *testing.T) {
	// GIVEN
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 4}
	output := &mockOutput{}
	config := createRegulatorConfig("regulator", 1, 0, 0, configuration.DirectionReverse, 10, -100, 100)
	reg := NewPidRegulator(config, sensor, output)

	// WHEN
	err := reg.Cycle()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, []float64{-6.0}, output.values)
}

func TestCycleClampsOutput(t *testing.T) {
	// GIVEN
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 0}
	output := &mockOutput{}
	config := createRegulatorConfig("regulator", 10, 0, 0, configuration.DirectionDirect, 10, 0, 50)
	reg := NewPidRegulator(config, sensor, output)

	// WHEN
	err := reg.Cycle()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, []float64{50.0}, output.values)
}

func TestCycleDisabledRegulatorDoesNotTouchOutput(t *testing.T) {
	// GIVEN
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 4}
	output := &mockOutput{}
	config := createRegulatorConfig("regulator", 1, 0, 0, configuration.DirectionDirect, 10, 0, 100)
	config.Disabled = true
	reg := NewPidRegulator(config, sensor, output)

	// WHEN
	err := reg.Cycle()

	// THEN
	assert.NoError(t, err)
	assert.Empty(t, output.values)
	assert.False(t, reg.Enabled())
	assert.Nil(t, reg.Attributes()[AttrOutput])
}

func TestSetEnabledResumesCycling(t *testing.T) {
	// GIVEN
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 4}
	output := &mockOutput{}
	config := createRegulatorConfig("regulator", 1, 0, 0, configuration.DirectionDirect, 10, 0, 100)
	config.Disabled = true
	reg := NewPidRegulator(config, sensor, output)

	// WHEN
	reg.SetEnabled(true)
	err := reg.Cycle()

	// THEN
	assert.NoError(t, err)
	assert.True(t, reg.Enabled())
	assert.Equal(t, []float64{6.0}, output.values)
}

func TestCycleOutputErrorKeepsState(t *testing.T) {
	// GIVEN
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 4}
	output := &mockOutput{failing: true}
	config := createRegulatorConfig("regulator", 1, 0, 0, configuration.DirectionDirect, 10, 0, 100)
	reg := NewPidRegulator(config, sensor, output)

	// WHEN
	err := reg.Cycle()

	// THEN
	assert.Error(t, err)
	assert.Empty(t, output.values)
	assert.Nil(t, reg.Attributes()[AttrOutput])
	assert.Equal(t, uint64(0), reg.CycleCount())
}

func TestResumeBumplessTransfer(t *testing.T) {
	// GIVEN
	// input matches the setpoint, so the restored output should be held
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 10}
	output := &mockOutput{}
	config := createRegulatorConfig("regulator", 1, 0.5, 0, configuration.DirectionDirect, 10, 0, 100)
	reg := NewPidRegulator(config, sensor, output)

	// WHEN
	reg.Resume(true, 10, 42)
	err := reg.Cycle()

	// THEN
	assert.NoError(t, err)
	assert.Len(t, output.values, 1)
	assert.InDelta(t, 42.0, output.values[0], 0.1)
}

func TestLastCycleStartTruncatedToSeconds(t *testing.T) {
	// GIVEN
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 4}
	output := &mockOutput{}
	config := createRegulatorConfig("regulator", 1, 0, 0, configuration.DirectionDirect, 10, 0, 100)
	reg := NewPidRegulator(config, sensor, output)

	// WHEN
	err := reg.Cycle()

	// THEN
	assert.NoError(t, err)
	lastCycleStart, ok := reg.Attributes()[AttrLastCycleStart].(time.Time)
	assert.True(t, ok)
	assert.Equal(t, 0, lastCycleStart.Nanosecond())
}

func TestCycleWithoutSensorValue(t *testing.T) {
	// GIVEN
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: math.NaN()}
	output := &mockOutput{}
	config := createRegulatorConfig("regulator", 1, 0, 0, configuration.DirectionDirect, 10, 0, 100)
	reg := NewPidRegulator(config, sensor, output)

	// WHEN
	err := reg.Cycle()
	attributes := reg.Attributes()

	// THEN
	assert.Error(t, err)
	assert.Empty(t, output.values)
	assert.Nil(t, attributes[AttrInput])
}
