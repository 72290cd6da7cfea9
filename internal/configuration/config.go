package configuration

import (
	"os"
	"time"

	"github.com/domectrl/pidreg/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	DbPath string `json:"dbPath"`

	SensorPollingRate       time.Duration `json:"sensorPollingRate"`
	SensorRollingWindowSize int           `json:"sensorRollingWindowSize"`

	// maximum number of cycle samples kept per regulator in the database
	HistoryLimit int `json:"historyLimit"`

	Regulators []RegulatorConfig `json:"regulators"`
	Sensors    []SensorConfig    `json:"sensors"`
	Outputs    []OutputConfig    `json:"outputs"`

	Api        ApiConfig        `json:"api"`
	Statistics StatisticsConfig `json:"statistics"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("pidreg")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/pidreg/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbpath", "/etc/pidreg/pidreg.db")

	viper.SetDefault("SensorPollingRate", 2*time.Second)
	viper.SetDefault("SensorRollingWindowSize", 10)

	viper.SetDefault("HistoryLimit", 1000)

	viper.SetDefault("regulators", []RegulatorConfig{})
	viper.SetDefault("sensors", []SensorConfig{})
	viper.SetDefault("outputs", []OutputConfig{})

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9001)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)
}

// DetectAndReadConfigFile detects the path of the first existing config file
// and reads it into viper
func DetectAndReadConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		// config file is required, so we fail here
		ui.Fatal("Error reading config file, %s", err)
	}
	// this is only populated _after_ ReadInConfig()
	return viper.ConfigFileUsed()
}

// LoadConfig unmarshals the read-in config file into the CurrentConfig struct
func LoadConfig() {
	err := viper.Unmarshal(
		&CurrentConfig,
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			cycleTimeHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)),
	)
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}
