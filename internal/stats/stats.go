package stats

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Stats tracks feed and query activity for the monitor's periodic log line.
type Stats struct {
	// Feed counts
	AcceptedUpdates uint64
	DroppedFrames   uint64
	Reconnects      uint64

	// Query counts
	FleetQueries  uint64
	QueryFailures uint64

	// Timing
	LastUpdateTime time.Time
	startTime      time.Time

	// Snapshot size
	VehiclesInView uint64

	mu sync.RWMutex
}

// New creates a new Stats instance
func New() *Stats {
	now := time.Now()
	return &Stats{
		LastUpdateTime: now,
		startTime:      now,
	}
}

// IncrementAcceptedUpdates increments the accepted updates counter
func (s *Stats) IncrementAcceptedUpdates() {
	atomic.AddUint64(&s.AcceptedUpdates, 1)
}

// IncrementDroppedFrames increments the dropped frames counter
func (s *Stats) IncrementDroppedFrames() {
	atomic.AddUint64(&s.DroppedFrames, 1)
}

// IncrementReconnects increments the reconnect counter
func (s *Stats) IncrementReconnects() {
	atomic.AddUint64(&s.Reconnects, 1)
}

// IncrementFleetQueries increments the fleet query counter
func (s *Stats) IncrementFleetQueries() {
	atomic.AddUint64(&s.FleetQueries, 1)
}

// IncrementQueryFailures increments the failed query counter
func (s *Stats) IncrementQueryFailures() {
	atomic.AddUint64(&s.QueryFailures, 1)
}

// SetVehiclesInView sets the current snapshot size
func (s *Stats) SetVehiclesInView(count uint64) {
	atomic.StoreUint64(&s.VehiclesInView, count)
}

// UpdateLastUpdateTime records the arrival of a live update
func (s *Stats) UpdateLastUpdateTime() {
	s.mu.Lock()
	s.LastUpdateTime = time.Now()
	s.mu.Unlock()
}

// GetStats returns a copy of the current statistics
func (s *Stats) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"accepted_updates": atomic.LoadUint64(&s.AcceptedUpdates),
		"dropped_frames":   atomic.LoadUint64(&s.DroppedFrames),
		"reconnects":       atomic.LoadUint64(&s.Reconnects),
		"fleet_queries":    atomic.LoadUint64(&s.FleetQueries),
		"query_failures":   atomic.LoadUint64(&s.QueryFailures),
		"vehicles_in_view": atomic.LoadUint64(&s.VehiclesInView),
		"last_update_time": s.LastUpdateTime,
		"uptime":           time.Since(s.startTime),
	}
}

// String returns a single-line summary suitable for the periodic log.
func (s *Stats) String() string {
	stats := s.GetStats()
	return fmt.Sprintf(
		"vehicles=%d updates=%d dropped=%d reconnects=%d queries=%d failures=%d uptime=%s",
		stats["vehicles_in_view"],
		stats["accepted_updates"],
		stats["dropped_frames"],
		stats["reconnects"],
		stats["fleet_queries"],
		stats["query_failures"],
		stats["uptime"].(time.Duration).Round(time.Second),
	)
}

// StartReporting logs the summary line on the given interval until the
// context is cancelled.
func (s *Stats) StartReporting(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Final stats: %s", s.String())
			return
		case <-ticker.C:
			log.Printf("Stats: %s", s.String())
		}
	}
}
