package sensor

import (
	"errors"
	"fmt"

	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/sensors"
	"github.com/domectrl/pidreg/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var sensorId string

var Command = &cobra.Command{
	Use:              "sensor",
	Short:            "Sensor related commands",
	Long:             ``,
	TraverseChildren: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := configuration.DetectAndReadConfigFile()
		ui.Info("Using configuration file at: %s", configPath)
		configuration.LoadConfig()
		err := configuration.Validate(configPath)
		if err != nil {
			ui.Fatal(err.Error())
		}

		for _, config := range configuration.CurrentConfig.Sensors {
			if config.ID != sensorId {
				continue
			}
			if config.Regulator != nil {
				return errors.New("regulator sensors can only be read from a running daemon")
			}

			sensor, err := sensors.NewSensor(config)
			if err != nil {
				return err
			}

			value, err := sensor.GetValue()
			if err != nil {
				return err
			}
			pterm.Printfln("%f", value)
			return nil
		}

		return errors.New(fmt.Sprintf("No sensor with id found: %s", sensorId))
	},
}

func init() {
	Command.PersistentFlags().StringVarP(
		&sensorId,
		"id", "i",
		"",
		"Sensor ID as specified in the config",
	)
	_ = Command.MarkPersistentFlagRequired("id")
}
