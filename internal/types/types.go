package types

import (
	"time"
)

// LatLng is a WGS84 coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is an axis-aligned bounding box. SW is the south-west corner, NE the
// north-east corner; SW.Lat <= NE.Lat. Longitude wraparound across the
// antimeridian is not handled.
type Bounds struct {
	SW LatLng `json:"sw"`
	NE LatLng `json:"ne"`
}

// LatSpan returns the height of the box in degrees.
func (b Bounds) LatSpan() float64 {
	return b.NE.Lat - b.SW.Lat
}

// LngSpan returns the width of the box in degrees.
func (b Bounds) LngSpan() float64 {
	return b.NE.Lng - b.SW.Lng
}

// Vehicle is one fleet vehicle as reported by the platform. Identity is
// VehicleID, stable across updates. Timestamps cross the wire as strings and
// are kept verbatim.
type Vehicle struct {
	VehicleID    string  `json:"vehicle_id"`
	Registration string  `json:"registration"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Speed        float64 `json:"speed"`
	Heading      float64 `json:"heading"`
	IgnitionOn   bool    `json:"ignition_on"`
	Timestamp    string  `json:"timestamp"`
}

// VehicleSet is a deduplicated set of vehicles from a spatial query.
type VehicleSet struct {
	Vehicles []Vehicle `json:"vehicles"`
	Count    int       `json:"count"`
}

// TrackPoint is one sample of a historical trip, immutable once fetched.
// Points are ordered by timestamp ascending; monotonicity is assumed, not
// verified.
type TrackPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Timestamp string  `json:"timestamp"`
}

// Time parses the point's timestamp. It returns the zero time and false when
// the timestamp is absent or malformed.
func (p TrackPoint) Time() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// VehicleRef is the registration/name pair attached to a track response.
type VehicleRef struct {
	Registration string `json:"registration"`
	Name         string `json:"name"`
}

// VehicleTrack is the track-history payload for one vehicle.
type VehicleTrack struct {
	VehicleID  string       `json:"vehicle_id"`
	Vehicle    VehicleRef   `json:"vehicle"`
	Points     []TrackPoint `json:"points"`
	PointCount int          `json:"point_count"`
}

// PositionUpdate is one accepted live-feed position message.
type PositionUpdate struct {
	VehicleID string  `json:"vehicle_id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Timestamp string  `json:"timestamp"`
}

// User identifies the authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the persisted authentication state. An absent session means
// signed-out.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
