package feed

import (
	"encoding/json"
	"math"

	"github.com/xli340/carbn/internal/types"
)

// command is a client->server subscription frame.
type command struct {
	Action     string   `json:"action"`
	VehicleIDs []string `json:"vehicle_ids"`
}

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"

	typePositionUpdate = "position_update"
)

// ParsePositionUpdate validates an inbound feed frame. A frame is accepted
// only when it carries the position_update type marker, a string vehicle id,
// finite numeric lat/lng/speed and a string timestamp. A missing or
// non-finite heading defaults to 0. Anything else is rejected; the feed is
// best-effort telemetry, so callers drop rejected frames rather than failing.
func ParsePositionUpdate(data []byte) (types.PositionUpdate, bool) {
	var raw struct {
		Type      string   `json:"type"`
		VehicleID *string  `json:"vehicle_id"`
		Lat       *float64 `json:"lat"`
		Lng       *float64 `json:"lng"`
		Speed     *float64 `json:"speed"`
		Heading   *float64 `json:"heading"`
		Timestamp *string  `json:"timestamp"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return types.PositionUpdate{}, false
	}
	if raw.Type != typePositionUpdate {
		return types.PositionUpdate{}, false
	}
	if raw.VehicleID == nil || raw.Timestamp == nil {
		return types.PositionUpdate{}, false
	}
	if !finite(raw.Lat) || !finite(raw.Lng) || !finite(raw.Speed) {
		return types.PositionUpdate{}, false
	}

	heading := 0.0
	if finite(raw.Heading) {
		heading = *raw.Heading
	}

	return types.PositionUpdate{
		VehicleID: *raw.VehicleID,
		Lat:       *raw.Lat,
		Lng:       *raw.Lng,
		Speed:     *raw.Speed,
		Heading:   heading,
		Timestamp: *raw.Timestamp,
	}, true
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
