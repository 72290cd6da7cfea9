package outputs

import (
	"os/user"
	"path/filepath"
	"strings"

	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/util"
)

type FileOutput struct {
	Config configuration.OutputConfig `json:"configuration"`
	Last   float64                    `json:"last"`
}

func (output *FileOutput) GetId() string {
	return output.Config.ID
}

func (output *FileOutput) GetConfig() configuration.OutputConfig {
	return output.Config
}

func (output *FileOutput) Set(value float64) error {
	filePath := output.Config.File.Path
	// resolve home dir path
	if strings.HasPrefix(filePath, "~") {
		currentUser, err := user.Current()
		if err != nil {
			return err
		}

		filePath = filepath.Join(currentUser.HomeDir, filePath[1:])
	}

	err := util.WriteFloatToFileAtomic(value, filePath)
	if err != nil {
		return err
	}
	output.Last = value
	return nil
}

func (output *FileOutput) GetLast() float64 {
	return output.Last
}
