package configuration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/domectrl/pidreg/internal/ui"
	"github.com/domectrl/pidreg/internal/util"
	"github.com/looplab/tarjan"
	"golang.org/x/exp/slices"
)

func Validate(configPath string) error {
	return validateConfig(&CurrentConfig, configPath)
}

func validateConfig(config *Configuration, path string) error {
	err := validateSensors(config)
	if err != nil {
		return err
	}
	err = validateOutputs(config)
	if err != nil {
		return err
	}
	err = validateRegulators(config)
	if err != nil {
		return err
	}

	if containsCmdConfigs(config) {
		if _, err := util.CheckFilePermissionsForExecution(path); err != nil {
			return fmt.Errorf("config file '%s' has invalid permissions: %s", path, err)
		}
	}

	return nil
}

func containsCmdConfigs(config *Configuration) bool {
	for _, sensorConfig := range config.Sensors {
		if sensorConfig.Cmd != nil {
			return true
		}
	}
	for _, outputConfig := range config.Outputs {
		if outputConfig.Cmd != nil {
			return true
		}
	}

	return false
}

func validateSensors(config *Configuration) error {
	var ids []string
	for _, sensorConfig := range config.Sensors {
		if slices.Contains(ids, sensorConfig.ID) {
			return fmt.Errorf("duplicate sensor id: %s", sensorConfig.ID)
		}
		ids = append(ids, sensorConfig.ID)

		subConfigs := 0
		if sensorConfig.File != nil {
			subConfigs++
		}
		if sensorConfig.Cmd != nil {
			subConfigs++
		}
		if sensorConfig.Regulator != nil {
			subConfigs++
		}
		if subConfigs > 1 {
			return fmt.Errorf("sensor %s: only one sensor type can be used per sensor definition block", sensorConfig.ID)
		}
		if subConfigs <= 0 {
			return fmt.Errorf("sensor %s: sub-configuration for sensor is missing, use one of: file | cmd | regulator", sensorConfig.ID)
		}

		if !isSensorConfigInUse(sensorConfig, config.Regulators) {
			ui.Warning("Unused sensor configuration: %s", sensorConfig.ID)
		}

		if sensorConfig.Regulator != nil {
			if !regulatorIdExists(sensorConfig.Regulator.Regulator, config) {
				return fmt.Errorf("sensor %s: no regulator definition with id '%s' found", sensorConfig.ID, sensorConfig.Regulator.Regulator)
			}
		}
	}

	return nil
}

func isSensorConfigInUse(config SensorConfig, regulators []RegulatorConfig) bool {
	for _, regulatorConfig := range regulators {
		if regulatorConfig.Sensor == config.ID {
			return true
		}
	}

	return false
}

func validateOutputs(config *Configuration) error {
	var ids []string
	for _, outputConfig := range config.Outputs {
		if slices.Contains(ids, outputConfig.ID) {
			return fmt.Errorf("duplicate output id: %s", outputConfig.ID)
		}
		ids = append(ids, outputConfig.ID)

		subConfigs := 0
		if outputConfig.File != nil {
			subConfigs++
		}
		if outputConfig.Cmd != nil {
			subConfigs++
		}
		if subConfigs > 1 {
			return fmt.Errorf("output %s: only one output type can be used per output definition block", outputConfig.ID)
		}
		if subConfigs <= 0 {
			return fmt.Errorf("output %s: sub-configuration for output is missing, use one of: file | cmd", outputConfig.ID)
		}

		users := outputUsers(outputConfig, config.Regulators)
		if len(users) <= 0 {
			ui.Warning("Unused output configuration: %s", outputConfig.ID)
		}
		if len(users) > 1 {
			return fmt.Errorf("output %s: used by more than one regulator: %s", outputConfig.ID, strings.Join(users, ", "))
		}
	}

	return nil
}

func outputUsers(config OutputConfig, regulators []RegulatorConfig) (users []string) {
	for _, regulatorConfig := range regulators {
		if regulatorConfig.Output == config.ID {
			users = append(users, regulatorConfig.ID)
		}
	}

	return users
}

func validateRegulators(config *Configuration) error {
	graph := make(map[interface{}][]interface{})

	var ids []string
	for _, regulatorConfig := range config.Regulators {
		if slices.Contains(ids, regulatorConfig.ID) {
			return fmt.Errorf("duplicate regulator id: %s", regulatorConfig.ID)
		}
		ids = append(ids, regulatorConfig.ID)

		supportedDirections := []string{"", DirectionDirect, DirectionReverse}
		if !slices.Contains(supportedDirections, regulatorConfig.Direction) {
			return fmt.Errorf("regulator %s: unsupported direction '%s', use one of: %s | %s",
				regulatorConfig.ID, regulatorConfig.Direction, DirectionDirect, DirectionReverse)
		}

		for name, gain := range map[string]*float64{
			"kp": regulatorConfig.Kp,
			"ki": regulatorConfig.Ki,
			"kd": regulatorConfig.Kd,
		} {
			if gain != nil && *gain < 0 {
				return fmt.Errorf("regulator %s: %s must not be negative, use direction: reverse to invert the loop", regulatorConfig.ID, name)
			}
		}

		// zero means unset and is replaced by the default later on
		if regulatorConfig.CycleTime < 0 {
			return fmt.Errorf("regulator %s: cycle time must not be negative", regulatorConfig.ID)
		}

		if regulatorConfig.Min >= regulatorConfig.Max {
			return fmt.Errorf("regulator %s: min output limit must be below max", regulatorConfig.ID)
		}

		if len(regulatorConfig.Sensor) <= 0 {
			return fmt.Errorf("regulator %s: missing sensor id", regulatorConfig.ID)
		}
		sensorConfig := sensorConfigById(regulatorConfig.Sensor, config)
		if sensorConfig == nil {
			return fmt.Errorf("regulator %s: no sensor definition with id '%s' found", regulatorConfig.ID, regulatorConfig.Sensor)
		}

		if len(regulatorConfig.Output) <= 0 {
			return fmt.Errorf("regulator %s: missing output id", regulatorConfig.ID)
		}
		if !outputIdExists(regulatorConfig.Output, config) {
			return fmt.Errorf("regulator %s: no output definition with id '%s' found", regulatorConfig.ID, regulatorConfig.Output)
		}

		// cascaded regulators form a dependency graph which must not contain cycles
		if sensorConfig.Regulator != nil {
			upstream := sensorConfig.Regulator.Regulator
			if upstream == regulatorConfig.ID {
				return fmt.Errorf("regulator %s: cannot use its own output as input", regulatorConfig.ID)
			}
			graph[regulatorConfig.ID] = []interface{}{upstream}
		}
	}

	err := validateNoLoops(graph)
	return err
}

func validateNoLoops(graph map[interface{}][]interface{}) error {
	output := tarjan.Connections(graph)
	for _, items := range output {
		if len(items) > 1 {
			return errors.New(fmt.Sprintf("You have created a regulator cascade loop, please check your configuration! Regulators: %v", items))
		}
	}
	return nil
}

func sensorConfigById(id string, config *Configuration) *SensorConfig {
	for idx, sensorConfig := range config.Sensors {
		if sensorConfig.ID == id {
			return &config.Sensors[idx]
		}
	}
	return nil
}

func regulatorIdExists(id string, config *Configuration) bool {
	for _, regulatorConfig := range config.Regulators {
		if regulatorConfig.ID == id {
			return true
		}
	}
	return false
}

func outputIdExists(id string, config *Configuration) bool {
	for _, outputConfig := range config.Outputs {
		if outputConfig.ID == id {
			return true
		}
	}
	return false
}
