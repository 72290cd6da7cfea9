package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/domectrl/pidreg/internal/api"
	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/controller"
	"github.com/domectrl/pidreg/internal/outputs"
	"github.com/domectrl/pidreg/internal/persistence"
	"github.com/domectrl/pidreg/internal/regulator"
	"github.com/domectrl/pidreg/internal/sensors"
	"github.com/domectrl/pidreg/internal/statistics"
	"github.com/domectrl/pidreg/internal/ui"
	"github.com/fsnotify/fsnotify"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

var errRestartRequested = errors.New("configuration change detected")

// collectors registered with prometheus during the current daemon run,
// unregistered again before a configuration reload
var registeredCollectors []prometheus.Collector

func RunDaemon() {
	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence: %v", err)
	}

	reloadSignal := make(chan string, 1)
	viper.OnConfigChange(func(in fsnotify.Event) {
		select {
		case reloadSignal <- in.Name:
		default:
		}
	})
	viper.WatchConfig()

	for {
		err := runDaemonOnce(pers, reloadSignal)
		if err == nil {
			ui.Info("Done.")
			os.Exit(0)
		}
		if !errors.Is(err, errRestartRequested) {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		ui.Info("Configuration changed, restarting all regulators...")
		configuration.LoadConfig()
		if err := configuration.Validate(viper.ConfigFileUsed()); err != nil {
			ui.Fatal("Config Validation Error: %s", err.Error())
		}
	}
}

func runDaemonOnce(pers persistence.Persistence, reloadSignal chan string) error {
	InitializeObjects()

	if regulator.RegulatorMap.Count() == 0 {
		ui.Fatal("No valid regulator configurations, exiting.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	{
		if configuration.CurrentConfig.Statistics.Enabled {
			// === Prometheus Exporter
			port := configuration.CurrentConfig.Statistics.Port
			addr := fmt.Sprintf(":%d", port)
			server := &http.Server{Addr: addr, Handler: promhttp.Handler()}

			g.Add(func() error {
				ui.Info("Starting statistics server at %s/metrics", addr)
				if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					ui.Error("Cannot start statistics server (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				if err := server.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping statistics server: %s", err.Error())
				} else {
					ui.Info("Statistics server stopped.")
				}
			})
		}
	}
	{
		if configuration.CurrentConfig.Api.Enabled {
			// === REST Api
			echoRest := api.CreateRestService()
			addr := fmt.Sprintf("%s:%d", configuration.CurrentConfig.Api.Host, configuration.CurrentConfig.Api.Port)

			g.Add(func() error {
				ui.Info("Starting REST api server at %s", addr)
				if err := echoRest.Start(addr); !errors.Is(err, http.ErrServerClosed) {
					ui.Error("Cannot start REST api server (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				if err := echoRest.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping REST api server: %s", err.Error())
				} else {
					ui.Info("REST api server stopped.")
				}
			})
		}
	}
	{
		// === regulator controllers
		pollingRate := configuration.CurrentConfig.SensorPollingRate

		for _, reg := range regulator.RegulatorMap.Items() {
			r := reg
			sensor, err := sensors.GetSensor(r.GetConfig().Sensor)
			if err != nil {
				ui.Fatal("Regulator %s: %v", r.GetId(), err)
			}

			regulatorController := controller.NewRegulatorController(pers, r, sensor, pollingRate)

			g.Add(func() error {
				err := regulatorController.Run(ctx)
				ui.Info("Regulator controller for %s stopped.", r.GetId())
				return err
			}, func(err error) {
				if err != nil {
					ui.Warning("Something went wrong: %v", err)
				}
				cancel()
			})
		}
	}
	{
		// === config file watcher
		g.Add(func() error {
			select {
			case <-ctx.Done():
				return nil
			case path := <-reloadSignal:
				ui.Info("Config file changed: %s", path)
				return errRestartRequested
			}
		}, func(err error) {
			cancel()
		})
	}
	{
		// === signal handling
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			select {
			case <-ctx.Done():
				return nil
			case <-sig:
				ui.Info("Received SIGTERM signal, exiting...")
				return nil
			}
		}, func(err error) {
			defer signal.Stop(sig)
			cancel()
		})
	}

	return g.Run()
}

// InitializeObjects creates sensors, outputs and regulators from the
// current configuration and registers their statistics collectors
func InitializeObjects() {
	clearObjects()

	var sensorList []sensors.Sensor
	for _, config := range configuration.CurrentConfig.Sensors {
		sensor, err := sensors.NewSensor(config)
		if err != nil {
			ui.Fatal("Unable to process sensor configuration: %s", config.ID)
		}
		sensorList = append(sensorList, sensor)
		sensors.SensorMap.Set(config.ID, sensor)
	}

	for _, config := range configuration.CurrentConfig.Outputs {
		output, err := outputs.NewOutput(config)
		if err != nil {
			ui.Fatal("Unable to process output configuration: %s", config.ID)
		}
		outputs.OutputMap.Set(config.ID, output)
	}

	var regulatorList []regulator.Regulator
	for _, config := range configuration.CurrentConfig.Regulators {
		reg, err := regulator.NewRegulator(config)
		if err != nil {
			ui.Fatal("Unable to process regulator configuration: %s (%v)", config.ID, err)
		}
		regulatorList = append(regulatorList, reg)
		regulator.RegulatorMap.Set(config.ID, reg)
	}

	connectCascadeSensors(sensorList)

	// seed the moving average of each sensor with its current value
	for _, sensor := range sensorList {
		currentValue, err := sensor.GetValue()
		if err != nil {
			ui.Warning("Error reading sensor %s: %v", sensor.GetId(), err)
			continue
		}
		sensor.SetMovingAvg(currentValue)
	}

	sensorCollector := statistics.NewSensorCollector(sensorList)
	statistics.Register(sensorCollector)
	regulatorCollector := statistics.NewRegulatorCollector(regulatorList)
	statistics.Register(regulatorCollector)
	registeredCollectors = append(registeredCollectors, sensorCollector, regulatorCollector)
}

// connectCascadeSensors wires each regulator-type sensor to the output
// of its upstream regulator
func connectCascadeSensors(sensorList []sensors.Sensor) {
	for _, sensor := range sensorList {
		regulatorSensor, ok := sensor.(*sensors.RegulatorSensor)
		if !ok {
			continue
		}

		upstreamId := regulatorSensor.GetConfig().Regulator.Regulator
		upstream, err := regulator.GetRegulator(upstreamId)
		if err != nil {
			ui.Fatal("Sensor %s: %v", regulatorSensor.GetId(), err)
		}

		regulatorSensor.Source = func() (float64, error) {
			attrs := upstream.Attributes()
			if attrs[regulator.AttrOutput] == nil {
				return 0, fmt.Errorf("regulator '%s' has not produced an output yet", upstream.GetId())
			}
			return upstream.LastOutput(), nil
		}
	}
}

func clearObjects() {
	for _, collector := range registeredCollectors {
		statistics.Unregister(collector)
	}
	registeredCollectors = nil

	sensors.SensorMap.Clear()
	outputs.OutputMap.Clear()
	regulator.RegulatorMap.Clear()
}
