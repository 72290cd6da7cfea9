package outputs

import (
	"fmt"
	"strconv"
	"time"

	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/util"
)

type CmdOutput struct {
	Config configuration.OutputConfig `json:"configuration"`
	Last   float64                    `json:"last"`
}

func (output *CmdOutput) GetId() string {
	return output.Config.ID
}

func (output *CmdOutput) GetConfig() configuration.OutputConfig {
	return output.Config
}

func (output *CmdOutput) Set(value float64) error {
	timeout := 2 * time.Second
	exec := output.Config.Cmd.Exec
	args := append(
		append([]string{}, output.Config.Cmd.Args...),
		strconv.FormatFloat(value, 'f', -1, 64),
	)

	_, err := util.SafeCmdExecution(exec, args, timeout)
	if err != nil {
		return fmt.Errorf("output %s: %s", output.GetId(), err.Error())
	}

	output.Last = value
	return nil
}

func (output *CmdOutput) GetLast() float64 {
	return output.Last
}
