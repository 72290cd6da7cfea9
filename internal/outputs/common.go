package outputs

import (
	"fmt"

	"github.com/domectrl/pidreg/internal/configuration"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	OutputMap = cmap.New[Output]()
)

type Output interface {
	GetId() string

	GetConfig() configuration.OutputConfig

	// Set applies the given value to the underlying actuator
	Set(value float64) error

	// GetLast returns the value most recently applied via Set
	GetLast() float64
}

func NewOutput(config configuration.OutputConfig) (Output, error) {
	if config.File != nil {
		return &FileOutput{
			Config: config,
		}, nil
	}

	if config.Cmd != nil {
		return &CmdOutput{
			Config: config,
		}, nil
	}

	return nil, fmt.Errorf("no matching output type for output: %s", config.ID)
}

func GetOutput(id string) (Output, error) {
	output, ok := OutputMap.Get(id)
	if !ok {
		return nil, fmt.Errorf("no output with id found: %s", id)
	}
	return output, nil
}
