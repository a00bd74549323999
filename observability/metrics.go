package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roadroute"

// Metrics holds the Prometheus collectors of the routing server. Every method
// is safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RouteRequests      *prometheus.CounterVec
	RouteDuration      prometheus.Histogram
	BridgedLegs        prometheus.Counter
	GraphBuildDuration prometheus.Histogram
	GraphNodes         prometheus.Gauge
	FetchErrors        *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RouteRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "route_requests_total",
				Help:      "Route requests by outcome",
			},
			[]string{"outcome"},
		),
		RouteDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "route_duration_seconds",
				Help:      "Time spent computing a route, graph loading included",
				Buckets:   prometheus.DefBuckets,
			},
		),
		BridgedLegs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridged_legs_total",
				Help:      "Route legs that were connected across a gap",
			},
		),
		GraphBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_build_duration_seconds",
				Help:      "Time spent building a road graph from geometries",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10},
			},
		),
		GraphNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_nodes",
				Help:      "Node count of the most recently built graph",
			},
		),
		FetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "geometry_fetch_errors_total",
				Help:      "Failed geometry fetches by source",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		m.RouteRequests,
		m.RouteDuration,
		m.BridgedLegs,
		m.GraphBuildDuration,
		m.GraphNodes,
		m.FetchErrors,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRoute records one route request. outcome is "ok" or an error kind.
func (m *Metrics) ObserveRoute(outcome string, d time.Duration, bridged int) {
	if m == nil {
		return
	}
	m.RouteRequests.WithLabelValues(outcome).Inc()
	m.RouteDuration.Observe(d.Seconds())
	if bridged > 0 {
		m.BridgedLegs.Add(float64(bridged))
	}
}

// ObserveGraphBuild records a finished graph build.
func (m *Metrics) ObserveGraphBuild(d time.Duration, nodes int) {
	if m == nil {
		return
	}
	m.GraphBuildDuration.Observe(d.Seconds())
	m.GraphNodes.Set(float64(nodes))
}

// FetchFailed counts a failed geometry fetch.
func (m *Metrics) FetchFailed(source string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(source).Inc()
}
