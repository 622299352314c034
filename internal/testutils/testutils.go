package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xli340/carbn/internal/types"
)

// MockPositionUpdate creates a live-feed position update for testing.
func MockPositionUpdate(vehicleID string, lat, lng float64) types.PositionUpdate {
	return types.PositionUpdate{
		VehicleID: vehicleID,
		Lat:       lat,
		Lng:       lng,
		Speed:     42,
		Heading:   90,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// MockPositionFrame renders a position update as a raw feed frame.
func MockPositionFrame(vehicleID string, lat, lng float64) []byte {
	u := MockPositionUpdate(vehicleID, lat, lng)
	data, _ := json.Marshal(map[string]interface{}{
		"type":       "position_update",
		"vehicle_id": u.VehicleID,
		"lat":        u.Lat,
		"lng":        u.Lng,
		"speed":      u.Speed,
		"heading":    u.Heading,
		"timestamp":  u.Timestamp,
	})
	return data
}

// MockTrack creates a track of n points spaced stepSeconds apart along a
// straight line starting at (lat, lng).
func MockTrack(n int, lat, lng float64, stepSeconds int) []types.TrackPoint {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	points := make([]types.TrackPoint, n)
	for i := 0; i < n; i++ {
		points[i] = types.TrackPoint{
			Lat:       lat + float64(i)*0.01,
			Lng:       lng + float64(i)*0.01,
			Speed:     30,
			Heading:   45,
			Timestamp: base.Add(time.Duration(i*stepSeconds) * time.Second).Format(time.RFC3339),
		}
	}
	return points
}

// WaitForCondition waits for a condition to become true with a timeout.
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
