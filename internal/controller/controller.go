package controller

import (
	"context"
	"math"
	"time"

	"github.com/domectrl/pidreg/internal/configuration"
	"github.com/domectrl/pidreg/internal/persistence"
	"github.com/domectrl/pidreg/internal/regulator"
	"github.com/domectrl/pidreg/internal/sensors"
	"github.com/domectrl/pidreg/internal/ui"
	"github.com/domectrl/pidreg/internal/util"
	"github.com/oklog/run"
)

type RegulatorController interface {
	Run(ctx context.Context) error
	RunCycle() error
}

type regulatorController struct {
	persistence persistence.Persistence
	regulator   regulator.Regulator
	sensor      sensors.Sensor
	pollingRate time.Duration
}

func NewRegulatorController(
	persistence persistence.Persistence,
	reg regulator.Regulator,
	sensor sensors.Sensor,
	pollingRate time.Duration,
) RegulatorController {
	return &regulatorController{
		persistence: persistence,
		regulator:   reg,
		sensor:      sensor,
		pollingRate: pollingRate,
	}
}

func (c *regulatorController) Run(ctx context.Context) error {
	reg := c.regulator

	// resume where a previous daemon run left off
	state, err := c.persistence.LoadRegulatorState(reg.GetId())
	if err == nil && state != nil {
		ui.Info("Restoring state of regulator '%s' (enabled: %v)", reg.GetId(), state.Enabled)
		reg.Resume(state.Enabled, nilToNan(state.LastInput), nilToNan(state.LastOutput))
	}

	ui.Info("Starting regulator cycle for '%s' (cycle time: %s)", reg.GetId(), reg.GetConfig().CycleTime)

	var g run.Group
	{
		// === sensor polling
		g.Add(func() error {
			tick := time.Tick(c.pollingRate)
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-tick:
					err := updateSensor(c.sensor)
					if err != nil {
						ui.Warning("Error polling sensor %s: %v", c.sensor.GetId(), err)
					}
				}
			}
		}, func(err error) {
			if err != nil {
				ui.Warning("Error polling sensor: %v", err)
			}
		})
	}
	{
		// === regulator cycle
		g.Add(func() error {
			tick := time.Tick(reg.GetConfig().CycleTime)
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-tick:
					err := c.RunCycle()
					if err != nil {
						ui.Error("Error in cycle of regulator %s: %v", reg.GetId(), err)
					}
				}
			}
		}, func(err error) {
			if err != nil {
				ui.Warning("Regulator %s stopped: %v", reg.GetId(), err)
			}
		})
	}

	return g.Run()
}

// RunCycle advances the regulator by one cycle and persists its state
func (c *regulatorController) RunCycle() error {
	reg := c.regulator

	err := reg.Cycle()
	if err != nil {
		return err
	}

	err = c.persistence.SaveRegulatorState(reg)
	if err != nil {
		ui.Warning("Failed to save state of regulator %s: %v", reg.GetId(), err)
	}

	if reg.Enabled() && !math.IsNaN(reg.LastOutput()) {
		err = c.persistence.AddHistoryEntry(
			reg.GetId(),
			persistence.HistoryEntry{
				Time:   reg.LastCycleStart(),
				Input:  reg.LastInput(),
				Output: reg.LastOutput(),
				Error:  reg.LastError(),
			},
			configuration.CurrentConfig.HistoryLimit,
		)
		if err != nil {
			ui.Warning("Failed to save history of regulator %s: %v", reg.GetId(), err)
		}
	}

	return nil
}

// read the current value of a sensor and update its moving average
func updateSensor(s sensors.Sensor) (err error) {
	value, err := s.GetValue()
	if err != nil {
		return err
	}

	var n = configuration.CurrentConfig.SensorRollingWindowSize
	lastAvg := s.GetMovingAvg()
	newAvg := util.UpdateSimpleMovingAvg(lastAvg, n, value)
	s.SetMovingAvg(newAvg)

	return nil
}

func nilToNan(value *float64) float64 {
	if value == nil {
		return math.NaN()
	}
	return *value
}
