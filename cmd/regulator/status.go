package regulator

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/domectrl/pidreg/cmd/global"
	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/persistence"
	"github.com/domectrl/pidreg/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the last persisted state of a regulator",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		reg, err := getRegulator(regulatorId)
		if err != nil {
			return err
		}

		pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
		state, err := pers.LoadRegulatorState(reg.GetId())
		if err == nil && state != nil {
			reg.Resume(state.Enabled, nilToNanValue(state.LastInput), nilToNanValue(state.LastOutput))
		}

		attributes := reg.Attributes()
		keys := make([]string, 0, len(attributes))
		for key := range attributes {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		tab := table.Table{
			Headers: []string{"", ""},
		}
		for _, key := range keys {
			value := "-"
			if attributes[key] != nil {
				value = fmt.Sprintf("%v", attributes[key])
			}
			tab.Rows = append(tab.Rows, []string{key, value})
		}

		var buf bytes.Buffer
		tableErr := tab.WriteTable(&buf, &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		})
		if tableErr != nil {
			return tableErr
		}
		ui.Printfln(reg.GetId())
		ui.Printfln(buf.String())
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVarP(&regulatorId, "id", "i", "", "Regulator ID as specified in the config")
	_ = statusCmd.MarkFlagRequired("id")
}
