package playback

import (
	"testing"

	"github.com/xli340/carbn/internal/types"
)

func pt(ts string) types.TrackPoint {
	return types.TrackPoint{Timestamp: ts}
}

func TestBuildSegments_DurationClamping(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want float64
	}{
		{
			name: "50ms apart clamps to the floor",
			from: "2024-03-01T10:00:00.000Z",
			to:   "2024-03-01T10:00:00.050Z",
			want: 180,
		},
		{
			name: "10s apart clamps to the ceiling",
			from: "2024-03-01T10:00:00Z",
			to:   "2024-03-01T10:00:10Z",
			want: 3200,
		},
		{
			name: "in range passes through",
			from: "2024-03-01T10:00:00Z",
			to:   "2024-03-01T10:00:01Z",
			want: 1000,
		},
		{
			name: "identical timestamps fall back",
			from: "2024-03-01T10:00:00Z",
			to:   "2024-03-01T10:00:00Z",
			want: 800,
		},
		{
			name: "reversed timestamps fall back",
			from: "2024-03-01T10:00:10Z",
			to:   "2024-03-01T10:00:00Z",
			want: 800,
		},
		{
			name: "unparseable timestamp falls back",
			from: "2024-03-01T10:00:00Z",
			to:   "not-a-time",
			want: 800,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := BuildSegments([]types.TrackPoint{pt(tt.from), pt(tt.to)})
			if len(segments) != 1 {
				t.Fatalf("BuildSegments() returned %d segments, want 1", len(segments))
			}
			if segments[0].DurationMs != tt.want {
				t.Errorf("DurationMs = %v, want %v", segments[0].DurationMs, tt.want)
			}
		})
	}
}

func TestBuildSegments_ShortTracks(t *testing.T) {
	if got := BuildSegments(nil); got != nil {
		t.Errorf("BuildSegments(nil) = %v, want nil", got)
	}
	if got := BuildSegments([]types.TrackPoint{pt("2024-03-01T10:00:00Z")}); got != nil {
		t.Errorf("BuildSegments(single point) = %v, want nil", got)
	}
}
