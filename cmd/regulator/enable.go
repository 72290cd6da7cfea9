package regulator

import (
	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/persistence"
	"github.com/domectrl/pidreg/internal/ui"
	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable the PID computation of a regulator",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(regulatorId, true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Suspend the PID computation of a regulator, freezing its output",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(regulatorId, false)
	},
}

// setEnabled updates the persisted enabled-state of a regulator. It takes
// effect on the next daemon start, a running daemon is controlled through
// the REST api instead.
func setEnabled(id string, enabled bool) error {
	reg, err := getRegulator(id)
	if err != nil {
		return err
	}

	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	state, err := pers.LoadRegulatorState(reg.GetId())
	if err == nil && state != nil {
		reg.Resume(state.Enabled, nilToNanValue(state.LastInput), nilToNanValue(state.LastOutput))
	}

	reg.SetEnabled(enabled)
	err = pers.SaveRegulatorState(reg)
	if err != nil {
		return err
	}

	if enabled {
		ui.Info("Regulator '%s' enabled", reg.GetId())
	} else {
		ui.Info("Regulator '%s' disabled", reg.GetId())
	}
	return nil
}

func init() {
	enableCmd.Flags().StringVarP(&regulatorId, "id", "i", "", "Regulator ID as specified in the config")
	_ = enableCmd.MarkFlagRequired("id")

	disableCmd.Flags().StringVarP(&regulatorId, "id", "i", "", "Regulator ID as specified in the config")
	_ = disableCmd.MarkFlagRequired("id")
}
