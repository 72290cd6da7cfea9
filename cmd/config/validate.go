package config

import (
	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		configPath := configuration.DetectAndReadConfigFile()
		ui.Info("Using configuration file at: %s", configPath)
		configuration.LoadConfig()
		err := configuration.Validate(configPath)
		if err != nil {
			ui.Fatal(err.Error())
		}

		pterm.Success.Printfln("Config looks good! :)")
	},
}
