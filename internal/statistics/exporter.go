package statistics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "pidreg"
)

func Register(collector prometheus.Collector) {
	prometheus.MustRegister(collector)
}

func Unregister(collector prometheus.Collector) {
	prometheus.Unregister(collector)
}
