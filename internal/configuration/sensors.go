package configuration

type SensorConfig struct {
	ID        string                 `json:"id"`
	File      *FileSensorConfig      `json:"file,omitempty"`
	Cmd       *CmdSensorConfig       `json:"cmd,omitempty"`
	Regulator *RegulatorSensorConfig `json:"regulator,omitempty"`
}

type FileSensorConfig struct {
	Path string `json:"path"`
}

type CmdSensorConfig struct {
	Exec string   `json:"exec"`
	Args []string `json:"args"`
}

// RegulatorSensorConfig reads the last output of another regulator,
// which allows building cascaded control chains.
type RegulatorSensorConfig struct {
	Regulator string `json:"regulator"`
}
