package pricing

import (
	"testing"
	"time"
)

func TestCalculate(t *testing.T) {
	rates := DefaultRates()
	base := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		start       time.Time
		end         time.Time
		wantMinutes int
		wantAmount  float64
	}{
		{
			name:        "ninety minutes",
			start:       base,
			end:         base.Add(90 * time.Minute),
			wantMinutes: 90,
			wantAmount:  46.50,
		},
		{
			name:        "two hours",
			start:       base,
			end:         base.Add(2 * time.Hour),
			wantMinutes: 120,
			wantAmount:  55.50,
		},
		{
			name:        "zero duration still charges base and energy",
			start:       base,
			end:         base,
			wantMinutes: 0,
			wantAmount:  19.50,
		},
		{
			name:        "end before start clamps to zero minutes",
			start:       base,
			end:         base.Add(-time.Hour),
			wantMinutes: 0,
			wantAmount:  19.50,
		},
		{
			name:        "sub-minute remainder rounds",
			start:       base,
			end:         base.Add(90*time.Minute + 29*time.Second),
			wantMinutes: 90,
			wantAmount:  46.50,
		},
		{
			name:        "half minute rounds up",
			start:       base,
			end:         base.Add(90*time.Minute + 30*time.Second),
			wantMinutes: 91,
			wantAmount:  46.80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(rates, tt.start, tt.end)
			if got.DurationMinutes != tt.wantMinutes {
				t.Errorf("DurationMinutes = %d, want %d", got.DurationMinutes, tt.wantMinutes)
			}
			if got.Estimate != tt.wantAmount {
				t.Errorf("Estimate = %.2f, want %.2f", got.Estimate, tt.wantAmount)
			}
		})
	}
}

func TestCalculate_RoundsToCents(t *testing.T) {
	rates := Rates{BaseFare: 10, HourlyRate: 10, EnergyFee: 0}
	base := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)

	// 10 minutes at $10/h is $1.666...; expect $11.67 total.
	got := Calculate(rates, base, base.Add(10*time.Minute))
	if got.Estimate != 11.67 {
		t.Errorf("Estimate = %v, want 11.67", got.Estimate)
	}
}

func TestDurationLabel(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0 min"},
		{45, "45 min"},
		{59, "59 min"},
		{60, "1 h"},
		{90, "1 h 30 min"},
		{120, "2 h"},
		{150, "2 h 30 min"},
		{180, "3 h"},
	}
	for _, tt := range tests {
		if got := DurationLabel(tt.minutes); got != tt.want {
			t.Errorf("DurationLabel(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestNewBooking(t *testing.T) {
	base := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)
	booking := NewBooking(DefaultRates(), "V7", base, base.Add(90*time.Minute))

	if booking.Reference == "" {
		t.Error("booking has no reference")
	}
	if booking.VehicleID != "V7" {
		t.Errorf("VehicleID = %q, want V7", booking.VehicleID)
	}
	if booking.Quote.Estimate != 46.50 {
		t.Errorf("Quote.Estimate = %v, want 46.50", booking.Quote.Estimate)
	}

	other := NewBooking(DefaultRates(), "V7", base, base.Add(90*time.Minute))
	if other.Reference == booking.Reference {
		t.Error("two bookings share a reference")
	}
}
