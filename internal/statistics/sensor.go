package statistics

import (
	"github.com/domectrl/pidreg/internal/sensors"
	"github.com/prometheus/client_golang/prometheus"
)

const sensorSubsystem = "sensor"

type SensorCollector struct {
	sensors []sensors.Sensor

	value     *prometheus.Desc
	movingAvg *prometheus.Desc
}

func NewSensorCollector(sensors []sensors.Sensor) *SensorCollector {
	return &SensorCollector{
		sensors: sensors,
		value: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "value"),
			"Current value of the sensor",
			[]string{"id"}, nil,
		),
		movingAvg: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "moving_avg"),
			"Moving average of the sensor value",
			[]string{"id"}, nil,
		),
	}
}

func (collector *SensorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.value
	ch <- collector.movingAvg
}

// Collect implements required collect function for all prometheus collectors
func (collector *SensorCollector) Collect(ch chan<- prometheus.Metric) {
	for _, sensor := range collector.sensors {
		id := sensor.GetId()

		value, err := sensor.GetValue()
		if err == nil {
			ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, value, id)
		}
		ch <- prometheus.MustNewConstMetric(collector.movingAvg, prometheus.GaugeValue, sensor.GetMovingAvg(), id)
	}
}
