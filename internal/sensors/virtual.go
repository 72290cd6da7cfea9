package sensors

import (
	"sync"

	"github.com/domectrl/pidreg/internal/configuration"
)

// VirtualSensor always reports a fixed value, mainly useful for testing.
type VirtualSensor struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`

	mu sync.Mutex
}

func (sensor *VirtualSensor) GetId() string {
	return sensor.Name
}

func (sensor *VirtualSensor) GetConfig() configuration.SensorConfig {
	return configuration.SensorConfig{ID: sensor.Name}
}

func (sensor *VirtualSensor) GetValue() (float64, error) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	return sensor.Value, nil
}

func (sensor *VirtualSensor) GetMovingAvg() (avg float64) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	return sensor.Value
}

func (sensor *VirtualSensor) SetMovingAvg(avg float64) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	sensor.Value = avg
}
