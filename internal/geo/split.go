package geo

import (
	"github.com/xli340/carbn/internal/types"
)

// The fleet API rejects spatial queries wider than these spans, so larger
// viewports are split before querying.
const (
	MaxLatSpan = 5.0
	MaxLngSpan = 6.0
)

// SplitBounds recursively partitions a bounding box into leaf boxes that each
// satisfy MaxLatSpan and MaxLngSpan. The returned boxes exactly cover the
// input with no gaps and no overlap beyond shared edges. Boxes already within
// the limits are returned as-is.
func SplitBounds(b types.Bounds) []types.Bounds {
	latSpan := b.LatSpan()
	lngSpan := b.LngSpan()

	if latSpan <= MaxLatSpan && lngSpan <= MaxLngSpan {
		return []types.Bounds{b}
	}

	if latSpan > MaxLatSpan && lngSpan > MaxLngSpan {
		latMid := b.SW.Lat + latSpan/2
		lngMid := b.SW.Lng + lngSpan/2
		return splitAll(
			types.Bounds{SW: types.LatLng{Lat: b.SW.Lat, Lng: b.SW.Lng}, NE: types.LatLng{Lat: latMid, Lng: lngMid}},
			types.Bounds{SW: types.LatLng{Lat: latMid, Lng: b.SW.Lng}, NE: types.LatLng{Lat: b.NE.Lat, Lng: lngMid}},
			types.Bounds{SW: types.LatLng{Lat: b.SW.Lat, Lng: lngMid}, NE: types.LatLng{Lat: latMid, Lng: b.NE.Lng}},
			types.Bounds{SW: types.LatLng{Lat: latMid, Lng: lngMid}, NE: types.LatLng{Lat: b.NE.Lat, Lng: b.NE.Lng}},
		)
	}

	if latSpan > MaxLatSpan {
		latMid := b.SW.Lat + latSpan/2
		return splitAll(
			types.Bounds{SW: types.LatLng{Lat: b.SW.Lat, Lng: b.SW.Lng}, NE: types.LatLng{Lat: latMid, Lng: b.NE.Lng}},
			types.Bounds{SW: types.LatLng{Lat: latMid, Lng: b.SW.Lng}, NE: types.LatLng{Lat: b.NE.Lat, Lng: b.NE.Lng}},
		)
	}

	lngMid := b.SW.Lng + lngSpan/2
	return splitAll(
		types.Bounds{SW: types.LatLng{Lat: b.SW.Lat, Lng: b.SW.Lng}, NE: types.LatLng{Lat: b.NE.Lat, Lng: lngMid}},
		types.Bounds{SW: types.LatLng{Lat: b.SW.Lat, Lng: lngMid}, NE: types.LatLng{Lat: b.NE.Lat, Lng: b.NE.Lng}},
	)
}

func splitAll(boxes ...types.Bounds) []types.Bounds {
	var out []types.Bounds
	for _, box := range boxes {
		out = append(out, SplitBounds(box)...)
	}
	return out
}
