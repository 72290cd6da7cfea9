package regulator

import (
	"fmt"

	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/persistence"
	"github.com/domectrl/pidreg/internal/ui"
	"github.com/domectrl/pidreg/internal/util"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the recorded cycle history of a regulator to console",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		loadAndValidateConfig()

		pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
		entries, err := pers.LoadHistory(regulatorId)
		if err != nil || len(entries) <= 0 {
			ui.Printfln("No cycle history for regulator '%s' yet...", regulatorId)
			return nil
		}

		inputValues := make([]float64, 0, len(entries))
		outputValues := make([]float64, 0, len(entries))
		inputWindow := util.CreateRollingWindow(len(entries))
		outputWindow := util.CreateRollingWindow(len(entries))
		for _, entry := range entries {
			inputValues = append(inputValues, entry.Input)
			outputValues = append(outputValues, entry.Output)
			inputWindow.Append(entry.Input)
			outputWindow.Append(entry.Output)
		}

		ui.Printfln(regulatorId)

		caption := fmt.Sprintf("input / cycle (avg: %.2f)", util.GetWindowAvg(inputWindow))
		graph := asciigraph.Plot(inputValues, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
		ui.Printfln(graph)
		ui.Printfln("")

		caption = fmt.Sprintf("output / cycle (avg: %.2f)", util.GetWindowAvg(outputWindow))
		graph = asciigraph.Plot(outputValues, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
		ui.Printfln(graph)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVarP(&regulatorId, "id", "i", "", "Regulator ID as specified in the config")
	_ = historyCmd.MarkFlagRequired("id")
}
