package controller

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/persistence"
	"github.com/domectrl/pidreg/internal/regulator"
	"github.com/domectrl/pidreg/internal/sensors"
	"github.com/stretchr/testify/assert"
)

type testOutput struct {
	config configuration.OutputConfig
	values []float64
}

func (o *testOutput) GetId() string                         { return o.config.ID }
func (o *testOutput) GetConfig() configuration.OutputConfig { return o.config }
func (o *testOutput) Set(value float64) error {
	o.values = append(o.values, value)
	return nil
}
func (o *testOutput) GetLast() float64 {
	if len(o.values) <= 0 {
		return 0
	}
	return o.values[len(o.values)-1]
}

func createTestRegulator(sensor sensors.Sensor, output *testOutput, disabled bool) regulator.Regulator {
	kp := 1.0
	ki := 0.0
	kd := 0.0
	config := configuration.RegulatorConfig{
		ID:        "regulator",
		Kp:        &kp,
		Ki:        &ki,
		Kd:        &kd,
		Direction: configuration.DirectionDirect,
		CycleTime: time.Second,
		SetPoint:  10,
		Min:       0,
		Max:       100,
		Disabled:  disabled,
		Sensor:    sensor.GetId(),
		Output:    output.GetId(),
	}
	return regulator.NewPidRegulator(config, sensor, output)
}

func createTestPersistence(t *testing.T) persistence.Persistence {
	p := persistence.NewPersistence(filepath.Join(t.TempDir(), "pidreg.db"))
	err := p.Init()
	assert.NoError(t, err)
	return p
}

func TestRunCycle(t *testing.T) {
	// GIVEN
	configuration.CurrentConfig.HistoryLimit = 10
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 4}
	output := &testOutput{config: configuration.OutputConfig{ID: "output"}}
	reg := createTestRegulator(sensor, output, false)
	p := createTestPersistence(t)
	controller := NewRegulatorController(p, reg, sensor, time.Second)

	// WHEN
	err := controller.RunCycle()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, []float64{6.0}, output.values)

	state, err := p.LoadRegulatorState(reg.GetId())
	assert.NoError(t, err)
	assert.True(t, state.Enabled)
	assert.Equal(t, 6.0, *state.LastOutput)

	entries, err := p.LoadHistory(reg.GetId())
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 4.0, entries[0].Input)
	assert.Equal(t, 6.0, entries[0].Output)
}

func TestRunCycleDisabledRegulatorRecordsNoHistory(t *testing.T) {
	// GIVEN
	configuration.CurrentConfig.HistoryLimit = 10
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 4}
	output := &testOutput{config: configuration.OutputConfig{ID: "output"}}
	reg := createTestRegulator(sensor, output, true)
	p := createTestPersistence(t)
	controller := NewRegulatorController(p, reg, sensor, time.Second)

	// WHEN
	err := controller.RunCycle()

	// THEN
	assert.NoError(t, err)
	assert.Empty(t, output.values)

	// state is still persisted so the disabled flag survives a restart
	state, err := p.LoadRegulatorState(reg.GetId())
	assert.NoError(t, err)
	assert.False(t, state.Enabled)

	_, err = p.LoadHistory(reg.GetId())
	assert.Error(t, err)
}

func TestRunCycleHonorsHistoryLimit(t *testing.T) {
	// GIVEN
	configuration.CurrentConfig.HistoryLimit = 2
	sensor := &sensors.VirtualSensor{Name: "sensor", Value: 4}
	output := &testOutput{config: configuration.OutputConfig{ID: "output"}}
	reg := createTestRegulator(sensor, output, false)
	p := createTestPersistence(t)
	controller := NewRegulatorController(p, reg, sensor, time.Second)

	// WHEN
	for i := 0; i < 4; i++ {
		err := controller.RunCycle()
		assert.NoError(t, err)
	}

	// THEN
	entries, err := p.LoadHistory(reg.GetId())
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestUpdateSensor(t *testing.T) {
	// GIVEN
	configuration.CurrentConfig.SensorRollingWindowSize = 2
	filePath := filepath.Join(t.TempDir(), "sensor_value")
	err := os.WriteFile(filePath, []byte("10"), 0644)
	assert.NoError(t, err)
	sensor := &sensors.FileSensor{
		Config: configuration.SensorConfig{
			ID:   "sensor",
			File: &configuration.FileSensorConfig{Path: filePath},
		},
	}
	sensor.SetMovingAvg(0)

	// WHEN
	err = updateSensor(sensor)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 5.0, sensor.GetMovingAvg())
}

func TestNilToNan(t *testing.T) {
	// GIVEN
	value := 42.0

	// WHEN / THEN
	assert.Equal(t, 42.0, nilToNan(&value))
	assert.True(t, math.IsNaN(nilToNan(nil)))
}
