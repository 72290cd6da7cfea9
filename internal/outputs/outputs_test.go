package outputs

import (
	"path/filepath"
	"testing"

	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/util"
	"github.com/stretchr/testify/assert"
)

func TestNewOutputFile(t *testing.T) {
	// GIVEN
	config := configuration.OutputConfig{
		ID:   "output",
		File: &configuration.FileOutputConfig{Path: "/tmp/output"},
	}

	// WHEN
	output, err := NewOutput(config)

	// THEN
	assert.NoError(t, err)
	assert.IsType(t, &FileOutput{}, output)
	assert.Equal(t, "output", output.GetId())
}

func TestNewOutputCmd(t *testing.T) {
	// GIVEN
	config := configuration.OutputConfig{
		ID:  "output",
		Cmd: &configuration.CmdOutputConfig{Exec: "/usr/bin/set-valve"},
	}

	// WHEN
	output, err := NewOutput(config)

	// THEN
	assert.NoError(t, err)
	assert.IsType(t, &CmdOutput{}, output)
}

func TestNewOutputWithoutSubConfig(t *testing.T) {
	// GIVEN
	config := configuration.OutputConfig{
		ID: "output",
	}

	// WHEN
	_, err := NewOutput(config)

	// THEN
	assert.Error(t, err)
}

func TestFileOutputSet(t *testing.T) {
	// GIVEN
	filePath := filepath.Join(t.TempDir(), "actuator_value")
	output := &FileOutput{
		Config: configuration.OutputConfig{
			ID:   "output",
			File: &configuration.FileOutputConfig{Path: filePath},
		},
	}

	// WHEN
	err := output.Set(42.5)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 42.5, output.GetLast())

	value, err := util.ReadFloatFromFile(filePath)
	assert.NoError(t, err)
	assert.Equal(t, 42.5, value)
}

func TestFileOutputSetOverwrites(t *testing.T) {
	// GIVEN
	filePath := filepath.Join(t.TempDir(), "actuator_value")
	output := &FileOutput{
		Config: configuration.OutputConfig{
			ID:   "output",
			File: &configuration.FileOutputConfig{Path: filePath},
		},
	}
	err := output.Set(1)
	assert.NoError(t, err)

	// WHEN
	err = output.Set(2)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 2.0, output.GetLast())

	value, err := util.ReadFloatFromFile(filePath)
	assert.NoError(t, err)
	assert.Equal(t, 2.0, value)
}

func TestGetOutput(t *testing.T) {
	// GIVEN
	output := &FileOutput{
		Config: configuration.OutputConfig{
			ID:   "registered",
			File: &configuration.FileOutputConfig{Path: "/tmp/output"},
		},
	}
	OutputMap.Set(output.GetId(), output)
	defer OutputMap.Remove(output.GetId())

	// WHEN
	result, err := GetOutput("registered")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, output, result)

	_, err = GetOutput("unknown")
	assert.Error(t, err)
}
