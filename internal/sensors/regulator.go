package sensors

import (
	"fmt"
	"sync"

	"github.com/domectrl/pidreg/internal/configuration"
)

// RegulatorSensor reads the last output value of another regulator.
// Used as input of a downstream regulator it forms a cascade chain.
type RegulatorSensor struct {
	Config    configuration.SensorConfig `json:"configuration"`
	MovingAvg float64                    `json:"movingAvg"`

	// Source is wired to the upstream regulator during daemon initialization.
	Source func() (float64, error) `json:"-"`

	mu sync.Mutex
}

func (sensor *RegulatorSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor *RegulatorSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor *RegulatorSensor) GetValue() (float64, error) {
	if sensor.Source == nil {
		return 0, fmt.Errorf("sensor %s: upstream regulator '%s' not connected", sensor.GetId(), sensor.Config.Regulator.Regulator)
	}
	return sensor.Source()
}

func (sensor *RegulatorSensor) GetMovingAvg() (avg float64) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	return sensor.MovingAvg
}

func (sensor *RegulatorSensor) SetMovingAvg(avg float64) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	sensor.MovingAvg = avg
}
