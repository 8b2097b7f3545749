package router

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alphagov/scene-router/geo"
	"github.com/alphagov/scene-router/handlers"
)

var (
	internalServerErrorCountMetric = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_internal_server_error_total",
			Help: "Number of 500 Internal Server Error responses originating from Router",
		},
		[]string{"host"},
	)

	segmentRequestCountMetric = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_segment_requests_total",
			Help: "Number of requests by classification result (bypass, cut_scene, regular, error)",
		},
		[]string{"result"},
	)

	sceneListErrorCountMetric = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_scene_list_error_total",
			Help: "Number of failed scene list reads, by reason",
		},
		[]string{"reason"},
	)
)

func registerMetrics(r prometheus.Registerer) {
	r.MustRegister(
		internalServerErrorCountMetric,
		segmentRequestCountMetric,
		sceneListErrorCountMetric,
	)
	handlers.RegisterMetrics(r)
	geo.RegisterMetrics(r)
}
