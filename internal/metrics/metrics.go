package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	SnapshotVehicles prometheus.Gauge
	FeedConnected    prometheus.Gauge

	FeedMessages   prometheus.Counter
	FeedDropped    prometheus.Counter
	FeedReconnects prometheus.Counter

	FleetQueries  *prometheus.CounterVec // result label: ok|error
	QueryLeaves   prometheus.Counter
	QueryDuration prometheus.Histogram

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter

	RefreshInterval prometheus.Gauge // seconds
}

func NewCollector(refreshInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		SnapshotVehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "monitor_snapshot_vehicles",
			Help: "Number of vehicles in the current snapshot.",
		}),
		FeedConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "monitor_feed_connected",
			Help: "1 if the live feed connection is established, 0 otherwise.",
		}),
		FeedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_feed_messages_total",
			Help: "Total accepted position updates from the live feed.",
		}),
		FeedDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_feed_dropped_total",
			Help: "Total malformed feed frames dropped.",
		}),
		FeedReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_feed_reconnects_total",
			Help: "Total feed reconnect attempts.",
		}),
		FleetQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_fleet_queries_total",
			Help: "Total partitioned live-vehicle queries.",
		}, []string{"result"}),
		QueryLeaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_query_leaves_total",
			Help: "Total leaf requests issued by partitioned queries.",
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "monitor_query_duration_seconds",
			Help:    "Duration of partitioned live-vehicle queries.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_nats_published_total",
			Help: "Total position updates republished to NATS.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		RefreshInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "monitor_refresh_interval_seconds",
			Help: "Viewport refresh interval in seconds.",
		}),
	}

	// Register
	reg.MustRegister(
		c.SnapshotVehicles, c.FeedConnected,
		c.FeedMessages, c.FeedDropped, c.FeedReconnects,
		c.FleetQueries, c.QueryLeaves, c.QueryDuration,
		c.NATSPublished, c.NATSPublishErrs,
		c.RefreshInterval,
	)

	c.RefreshInterval.Set(refreshInterval.Seconds())

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
