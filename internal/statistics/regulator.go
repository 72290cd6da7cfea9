package statistics

import (
	"math"

	"github.com/domectrl/pidreg/internal/regulator"
	"github.com/prometheus/client_golang/prometheus"
)

const regulatorSubsystem = "regulator"

type RegulatorCollector struct {
	regulators []regulator.Regulator

	kp         *prometheus.Desc
	ki         *prometheus.Desc
	kd         *prometheus.Desc
	setPoint   *prometheus.Desc
	input      *prometheus.Desc
	output     *prometheus.Desc
	pidError   *prometheus.Desc
	enabled    *prometheus.Desc
	cycleCount *prometheus.Desc
}

func NewRegulatorCollector(regulators []regulator.Regulator) *RegulatorCollector {
	return &RegulatorCollector{
		regulators: regulators,
		kp: prometheus.NewDesc(prometheus.BuildFQName(namespace, regulatorSubsystem, "kp"),
			"Proportional gain of the regulator",
			[]string{"id"}, nil,
		),
		ki: prometheus.NewDesc(prometheus.BuildFQName(namespace, regulatorSubsystem, "ki"),
			"Integral gain of the regulator",
			[]string{"id"}, nil,
		),
		kd: prometheus.NewDesc(prometheus.BuildFQName(namespace, regulatorSubsystem, "kd"),
			"Derivative gain of the regulator",
			[]string{"id"}, nil,
		),
		setPoint: prometheus.NewDesc(prometheus.BuildFQName(namespace, regulatorSubsystem, "setpoint"),
			"Setpoint of the regulator",
			[]string{"id"}, nil,
		),
		input: prometheus.NewDesc(prometheus.BuildFQName(namespace, regulatorSubsystem, "input"),
			"Last input value of the regulator",
			[]string{"id"}, nil,
		),
		output: prometheus.NewDesc(prometheus.BuildFQName(namespace, regulatorSubsystem, "output"),
			"Last output value of the regulator",
			[]string{"id"}, nil,
		),
		pidError: prometheus.NewDesc(prometheus.BuildFQName(namespace, regulatorSubsystem, "error"),
			"Last control error of the regulator",
			[]string{"id"}, nil,
		),
		enabled: prometheus.NewDesc(prometheus.BuildFQName(namespace, regulatorSubsystem, "enabled"),
			"Whether the PID computation of this regulator is currently active",
			[]string{"id"}, nil,
		),
		cycleCount: prometheus.NewDesc(prometheus.BuildFQName(namespace, regulatorSubsystem, "cycle_count"),
			"Counter for the number of completed PID cycles of this regulator",
			[]string{"id"}, nil,
		),
	}
}

func (collector *RegulatorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.kp
	ch <- collector.ki
	ch <- collector.kd
	ch <- collector.setPoint
	ch <- collector.input
	ch <- collector.output
	ch <- collector.pidError
	ch <- collector.enabled
	ch <- collector.cycleCount
}

// Collect implements required collect function for all prometheus collectors
func (collector *RegulatorCollector) Collect(ch chan<- prometheus.Metric) {
	for _, reg := range collector.regulators {
		id := reg.GetId()
		config := reg.GetConfig()

		ch <- prometheus.MustNewConstMetric(collector.kp, prometheus.GaugeValue, *config.Kp, id)
		ch <- prometheus.MustNewConstMetric(collector.ki, prometheus.GaugeValue, *config.Ki, id)
		ch <- prometheus.MustNewConstMetric(collector.kd, prometheus.GaugeValue, *config.Kd, id)
		ch <- prometheus.MustNewConstMetric(collector.setPoint, prometheus.GaugeValue, config.SetPoint, id)

		if !math.IsNaN(reg.LastInput()) {
			ch <- prometheus.MustNewConstMetric(collector.input, prometheus.GaugeValue, reg.LastInput(), id)
		}
		if !math.IsNaN(reg.LastOutput()) {
			ch <- prometheus.MustNewConstMetric(collector.output, prometheus.GaugeValue, reg.LastOutput(), id)
		}
		if !math.IsNaN(reg.LastError()) {
			ch <- prometheus.MustNewConstMetric(collector.pidError, prometheus.GaugeValue, reg.LastError(), id)
		}

		enabled := 0.0
		if reg.Enabled() {
			enabled = 1.0
		}
		ch <- prometheus.MustNewConstMetric(collector.enabled, prometheus.GaugeValue, enabled, id)
		ch <- prometheus.MustNewConstMetric(collector.cycleCount, prometheus.CounterValue, float64(reg.CycleCount()), id)
	}
}
