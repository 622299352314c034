package playback

import (
	"github.com/xli340/carbn/internal/types"
)

// Segment duration clamping keeps degenerate or missing timestamps from
// producing an instant jump or a frozen multi-minute step.
const (
	minSegmentDurationMs      = 180
	maxSegmentDurationMs      = 3200
	fallbackSegmentDurationMs = 800
)

// Segment is one interpolation unit between two consecutive track points.
type Segment struct {
	From       types.TrackPoint
	To         types.TrackPoint
	DurationMs float64
}

// BuildSegments derives the interpolation segments for a track. The raw
// timestamp delta is clamped into [180ms, 3200ms]; a non-positive or
// unparseable delta falls back to 800ms. Tracks with fewer than two points
// have no segments.
func BuildSegments(points []types.TrackPoint) []Segment {
	if len(points) < 2 {
		return nil
	}

	segments := make([]Segment, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		from, to := points[i], points[i+1]

		durationMs := float64(fallbackSegmentDurationMs)
		fromTime, fromOK := from.Time()
		toTime, toOK := to.Time()
		if fromOK && toOK {
			if raw := toTime.Sub(fromTime).Milliseconds(); raw > 0 {
				durationMs = clamp(float64(raw), minSegmentDurationMs, maxSegmentDurationMs)
			}
		}

		segments = append(segments, Segment{From: from, To: to, DurationMs: durationMs})
	}
	return segments
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
