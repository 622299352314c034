package geo

import (
	"math"

	"github.com/xli340/carbn/internal/types"
)

// NormalizeHeading maps a heading in degrees onto [0, 360). Vehicle headings
// may arrive un-normalized from the platform.
func NormalizeHeading(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

// ShortestHeadingDelta returns the signed shortest-arc difference between two
// headings, in (-180, 180]. Interpolating along this delta avoids the
// wrong-way 359°→1° sweep around the compass.
func ShortestHeadingDelta(from, to float64) float64 {
	delta := NormalizeHeading(to) - NormalizeHeading(from)
	delta = math.Mod(delta+540, 360) - 180
	if delta <= -180 {
		// Opposite headings turn clockwise.
		delta += 360
	}
	return delta
}

// HeadingFromPoints derives a heading from the bearing between two track
// points, for points that did not report one.
func HeadingFromPoints(a, b types.TrackPoint) float64 {
	rad := math.Atan2(b.Lng-a.Lng, b.Lat-a.Lat)
	return NormalizeHeading(rad * 180 / math.Pi)
}
