package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func createValidConfig() Configuration {
	return Configuration{
		Sensors: []SensorConfig{
			{
				ID:   "temp",
				File: &FileSensorConfig{Path: "/tmp/temp"},
			},
		},
		Outputs: []OutputConfig{
			{
				ID:   "valve",
				File: &FileOutputConfig{Path: "/tmp/valve"},
			},
		},
		Regulators: []RegulatorConfig{
			{
				ID:     "heating",
				Sensor: "temp",
				Output: "valve",
				Min:    0,
				Max:    100,
			},
		},
	}
}

func TestValidateValidConfig(t *testing.T) {
	// GIVEN
	config := createValidConfig()

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.NoError(t, err)
}

func TestValidateSensorWithoutSubConfig(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Sensors[0].File = nil

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sub-configuration for sensor is missing")
}

func TestValidateSensorWithMultipleSubConfigs(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Sensors[0].Regulator = &RegulatorSensorConfig{Regulator: "heating"}

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "only one sensor type")
}

func TestValidateOutputWithoutSubConfig(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Outputs[0].File = nil

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sub-configuration for output is missing")
}

func TestValidateOutputUsedByMultipleRegulators(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Regulators = append(config.Regulators, RegulatorConfig{
		ID:     "cooling",
		Sensor: "temp",
		Output: "valve",
		Min:    0,
		Max:    100,
	})

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "used by more than one regulator")
}

func TestValidateDuplicateSensorId(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Sensors = append(config.Sensors, SensorConfig{
		ID:   "temp",
		File: &FileSensorConfig{Path: "/tmp/other_temp"},
	})

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate sensor id")
}

func TestValidateDuplicateOutputId(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Outputs = append(config.Outputs, OutputConfig{
		ID:   "valve",
		File: &FileOutputConfig{Path: "/tmp/other_valve"},
	})

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate output id")
}

func TestValidateDuplicateRegulatorId(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Regulators = append(config.Regulators, config.Regulators[0])

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate regulator id")
}

func TestValidateUnknownSensorReference(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Regulators[0].Sensor = "does_not_exist"

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no sensor definition")
}

func TestValidateUnknownOutputReference(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Regulators[0].Output = "does_not_exist"

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no output definition")
}

func TestValidateNegativeGain(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	kp := -1.0
	config.Regulators[0].Kp = &kp

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestValidateNegativeCycleTime(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Regulators[0].CycleTime = -time.Second

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cycle time must not be negative")
}

func TestValidateZeroCycleTime(t *testing.T) {
	// GIVEN
	// an unset cycle time is replaced by the default later on
	config := createValidConfig()
	config.Regulators[0].CycleTime = 0

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.NoError(t, err)
}

func TestValidateInvalidDirection(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Regulators[0].Direction = "backwards"

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported direction")
}

func TestValidateInvalidOutputLimits(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Regulators[0].Min = 100
	config.Regulators[0].Max = 0

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min output limit must be below max")
}

func TestValidateSelfReferencingCascade(t *testing.T) {
	// GIVEN
	config := createValidConfig()
	config.Sensors[0].File = nil
	config.Sensors[0].Regulator = &RegulatorSensorConfig{Regulator: "heating"}

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot use its own output as input")
}

func TestValidateCascadeLoop(t *testing.T) {
	// GIVEN
	config := Configuration{
		Sensors: []SensorConfig{
			{
				ID:        "from_b",
				Regulator: &RegulatorSensorConfig{Regulator: "b"},
			},
			{
				ID:        "from_a",
				Regulator: &RegulatorSensorConfig{Regulator: "a"},
			},
		},
		Outputs: []OutputConfig{
			{
				ID:   "out_a",
				File: &FileOutputConfig{Path: "/tmp/out_a"},
			},
			{
				ID:   "out_b",
				File: &FileOutputConfig{Path: "/tmp/out_b"},
			},
		},
		Regulators: []RegulatorConfig{
			{
				ID:     "a",
				Sensor: "from_b",
				Output: "out_a",
				Min:    0,
				Max:    100,
			},
			{
				ID:     "b",
				Sensor: "from_a",
				Output: "out_b",
				Min:    0,
				Max:    100,
			},
		},
	}

	// WHEN
	err := validateConfig(&config, "")

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cascade loop")
}
