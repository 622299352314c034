package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Default rates, in dollars. EnergyFee is a flat per-booking charge.
const (
	DefaultBaseFare   = 15.0
	DefaultHourlyRate = 18.0
	DefaultEnergyFee  = 4.5
)

// Rates holds the pricing inputs for a quote.
type Rates struct {
	BaseFare   float64
	HourlyRate float64
	EnergyFee  float64
}

// DefaultRates returns the standard rate card.
func DefaultRates() Rates {
	return Rates{
		BaseFare:   DefaultBaseFare,
		HourlyRate: DefaultHourlyRate,
		EnergyFee:  DefaultEnergyFee,
	}
}

// Quote is the estimate for a booking window.
type Quote struct {
	Estimate        float64 `json:"estimate"`
	DurationMinutes int     `json:"duration_minutes"`
}

// Calculate quotes a booking from start to end. The duration is rounded to
// whole minutes and never negative; the estimate never drops below the base
// fare and is rounded to cents.
func Calculate(rates Rates, start, end time.Time) Quote {
	minutes := int(math.Round(float64(end.Sub(start).Milliseconds()) / 60000.0))
	if minutes < 0 {
		minutes = 0
	}

	estimate := rates.BaseFare + rates.HourlyRate*(float64(minutes)/60.0) + rates.EnergyFee
	if estimate < rates.BaseFare {
		estimate = rates.BaseFare
	}
	estimate = math.Round(estimate*100) / 100

	return Quote{
		Estimate:        estimate,
		DurationMinutes: minutes,
	}
}

// DurationLabel formats a minute count for display: "45 min" under an hour,
// "2 h" on the hour, "1 h 30 min" otherwise.
func DurationLabel(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	rem := minutes % 60
	if rem == 0 {
		return fmt.Sprintf("%d h", hours)
	}
	return fmt.Sprintf("%d h %d min", hours, rem)
}

// Booking is a simulated booking record. No payment or reservation backend
// is involved; the reference is generated locally.
type Booking struct {
	Reference string    `json:"reference"`
	VehicleID string    `json:"vehicle_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Quote     Quote     `json:"quote"`
}

// NewBooking quotes the window and wraps it in a booking record with a fresh
// reference.
func NewBooking(rates Rates, vehicleID string, start, end time.Time) Booking {
	return Booking{
		Reference: uuid.New().String(),
		VehicleID: vehicleID,
		Start:     start,
		End:       end,
		Quote:     Calculate(rates, start, end),
	}
}
