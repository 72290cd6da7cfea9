package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/domectrl/pidreg/internal/ui"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

const defaultConfig = `# pidreg example configuration
sensorPollingRate: 2s
sensorRollingWindowSize: 10

sensors:
  - id: room_temperature
    file:
      path: /tmp/room_temperature

outputs:
  - id: radiator_valve
    file:
      path: /tmp/radiator_valve

regulators:
  - id: room_heating
    sensor: room_temperature
    output: radiator_valve
    setPoint: 21.0
    kp: 1
    ki: 0.01
    kd: 0
    direction: direct
    cycleTime: "00:00:10"
    min: 0
    max: 100

api:
  enabled: false
  host: localhost
  port: 9001

statistics:
  enabled: false
  port: 9000
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example configuration file to the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "./pidreg.yaml"
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}

		err := atomic.WriteFile(path, strings.NewReader(defaultConfig))
		if err != nil {
			return err
		}

		ui.Info("Example configuration written to: %s", path)
		return nil
	},
}
