package geo

import (
	"math"
	"testing"

	"github.com/xli340/carbn/internal/types"
)

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{370, 10},
		{-10, 350},
		{-360, 0},
		{725, 5},
	}

	for _, tt := range tests {
		if got := NormalizeHeading(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeHeading(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestShortestHeadingDelta(t *testing.T) {
	tests := []struct {
		from, to float64
		want     float64
	}{
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{180, 0, 180},
		{90, 270, 180},
		{270, 90, 180},
		{90, 90, 0},
		{0, 270, -90},
		{-10, 10, 20},
	}

	for _, tt := range tests {
		if got := ShortestHeadingDelta(tt.from, tt.to); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ShortestHeadingDelta(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

// Interpolating 350°→10° halfway must cross north at 0°, not sweep back
// through 180°.
func TestHeadingWraparoundMidpoint(t *testing.T) {
	mid := NormalizeHeading(350 + ShortestHeadingDelta(350, 10)*0.5)
	if math.Abs(mid) > 1e-9 && math.Abs(mid-360) > 1e-9 {
		t.Errorf("midpoint heading = %v, want 0", mid)
	}
}

func TestHeadingFromPoints(t *testing.T) {
	tests := []struct {
		name string
		a, b types.TrackPoint
		want float64
	}{
		{
			name: "due north",
			a:    types.TrackPoint{Lat: 0, Lng: 0},
			b:    types.TrackPoint{Lat: 1, Lng: 0},
			want: 0,
		},
		{
			name: "due east",
			a:    types.TrackPoint{Lat: 0, Lng: 0},
			b:    types.TrackPoint{Lat: 0, Lng: 1},
			want: 90,
		},
		{
			name: "due south",
			a:    types.TrackPoint{Lat: 1, Lng: 0},
			b:    types.TrackPoint{Lat: 0, Lng: 0},
			want: 180,
		},
		{
			name: "due west",
			a:    types.TrackPoint{Lat: 0, Lng: 1},
			b:    types.TrackPoint{Lat: 0, Lng: 0},
			want: 270,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeadingFromPoints(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HeadingFromPoints() = %v, want %v", got, tt.want)
			}
		})
	}
}
