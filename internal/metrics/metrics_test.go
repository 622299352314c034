package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCollector_Exposition(t *testing.T) {
	c := NewCollector(60 * time.Second)

	c.SnapshotVehicles.Set(12)
	c.FeedConnected.Set(1)
	c.FeedMessages.Inc()
	c.FeedDropped.Inc()
	c.FleetQueries.WithLabelValues("ok").Inc()
	c.QueryLeaves.Add(4)
	c.QueryDuration.Observe(0.25)
	c.NATSPublished.Inc()

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	text := string(body)

	for _, want := range []string{
		"monitor_snapshot_vehicles 12",
		"monitor_feed_connected 1",
		"monitor_feed_messages_total 1",
		"monitor_feed_dropped_total 1",
		`monitor_fleet_queries_total{result="ok"} 1`,
		"monitor_query_leaves_total 4",
		"monitor_nats_published_total 1",
		"monitor_refresh_interval_seconds 60",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
