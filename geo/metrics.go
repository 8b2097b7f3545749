package geo

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	diagnosticCountMetric = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_geo_diagnostic_total",
			Help: "Number of cut scene geo diagnostics logged, by resolved country",
		},
		[]string{"country"},
	)
)

func RegisterMetrics(r prometheus.Registerer) {
	r.MustRegister(diagnosticCountMetric)
}
