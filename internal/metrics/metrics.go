package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BusStopDistance is the distance evaluated by the most recent page lifetime.
	BusStopDistance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bus_stop_distance_meters",
		Help: "Great-circle distance in meters between the bus and the first stop at the start of the current page lifetime",
	})

	// ProximityTier is the alert tier of the most recent page lifetime.
	ProximityTier = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bus_proximity_tier",
		Help: "Alert tier of the current page lifetime (0 = far, 1 = close, 2 = closer)",
	})
)

var (
	FlashToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bus_proximity_flash_toggles_total",
		Help: "Number of highlight toggles applied to the map container",
	}, []string{"phase"})

	PageReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bus_proximity_page_reloads_total",
		Help: "Number of page reloads triggered by the monitor",
	})

	StartupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bus_proximity_startup_failures_total",
		Help: "Number of page lifetimes that failed before any timer was registered",
	}, []string{"reason"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bus_proximity_notifications_total",
		Help: "Number of bus approaching notifications by result",
	}, []string{"result"})
)

var (
	// OutgoingLatency tracks the latency of outgoing HTTP requests (configuration fetches).
	OutgoingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_outgoing_request_duration_seconds",
		Help:    "Latency of outgoing HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"url", "method", "status"})
)
