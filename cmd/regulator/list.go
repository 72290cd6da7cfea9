package regulator

import (
	"bytes"
	"strconv"

	"github.com/domectrl/pidreg/cmd/global"
	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print an overview of all configured regulators to console",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		loadAndValidateConfig()

		tab := table.Table{
			Headers: []string{"ID", "Sensor", "Output", "Setpoint", "Kp", "Ki", "Kd", "Direction", "Cycle Time"},
		}
		for _, regulatorConf := range configuration.CurrentConfig.Regulators {
			regulatorConf = regulatorConf.WithDefaults()
			tab.Rows = append(tab.Rows, []string{
				regulatorConf.ID,
				regulatorConf.Sensor,
				regulatorConf.Output,
				strconv.FormatFloat(regulatorConf.SetPoint, 'f', -1, 64),
				strconv.FormatFloat(*regulatorConf.Kp, 'f', -1, 64),
				strconv.FormatFloat(*regulatorConf.Ki, 'f', -1, 64),
				strconv.FormatFloat(*regulatorConf.Kd, 'f', -1, 64),
				regulatorConf.Direction,
				regulatorConf.CycleTime.String(),
			})
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
		ui.Printfln(buf.String())
		return nil
	},
}
