package regulator

import (
	"math"

	"github.com/domectrl/pidreg/internal"
	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/regulator"
	"github.com/domectrl/pidreg/internal/ui"
	"github.com/spf13/cobra"
)

var regulatorId string

var Command = &cobra.Command{
	Use:              "regulator",
	Short:            "Regulator related commands",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.AddCommand(listCmd)
	Command.AddCommand(statusCmd)
	Command.AddCommand(historyCmd)
	Command.AddCommand(enableCmd)
	Command.AddCommand(disableCmd)
}

func loadAndValidateConfig() {
	configPath := configuration.DetectAndReadConfigFile()
	ui.Info("Using configuration file at: %s", configPath)
	configuration.LoadConfig()
	err := configuration.Validate(configPath)
	if err != nil {
		ui.Fatal(err.Error())
	}
}

func getRegulator(id string) (regulator.Regulator, error) {
	loadAndValidateConfig()
	internal.InitializeObjects()
	return regulator.GetRegulator(id)
}

func nilToNanValue(value *float64) float64 {
	if value == nil {
		return math.NaN()
	}
	return *value
}
