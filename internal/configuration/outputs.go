package configuration

type OutputConfig struct {
	ID   string            `json:"id"`
	File *FileOutputConfig `json:"file,omitempty"`
	Cmd  *CmdOutputConfig  `json:"cmd,omitempty"`
}

type FileOutputConfig struct {
	Path string `json:"path"`
}

// CmdOutputConfig executes the given command on each cycle,
// the computed output value is appended as last argument.
type CmdOutputConfig struct {
	Exec string   `json:"exec"`
	Args []string `json:"args"`
}
