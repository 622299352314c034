package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/xli340/carbn/internal/pricing"
)

// defaultWindow is used when no explicit window is given, matching the
// booking dialog's two-hour preselection.
const defaultWindow = 2 * time.Hour

func main() {
	vehicleID := flag.String("vehicle", "", "vehicle id to book (required)")
	startRaw := flag.String("start", "", "booking start, RFC3339 (default: now)")
	endRaw := flag.String("end", "", "booking end, RFC3339 (default: start + 2h)")
	book := flag.Bool("book", false, "create a simulated booking record")
	flag.Parse()

	if *vehicleID == "" {
		flag.Usage()
		os.Exit(2)
	}

	start := time.Now()
	if *startRaw != "" {
		parsed, err := time.Parse(time.RFC3339, *startRaw)
		if err != nil {
			log.Printf("Invalid -start: %v", err)
			os.Exit(2)
		}
		start = parsed
	}
	end := start.Add(defaultWindow)
	if *endRaw != "" {
		parsed, err := time.Parse(time.RFC3339, *endRaw)
		if err != nil {
			log.Printf("Invalid -end: %v", err)
			os.Exit(2)
		}
		end = parsed
	}
	if !end.After(start) {
		// Malformed windows fall back to the default preselection.
		end = start.Add(defaultWindow)
	}

	rates := pricing.DefaultRates()
	quote := pricing.Calculate(rates, start, end)

	fmt.Printf("Vehicle:  %s\n", *vehicleID)
	fmt.Printf("Window:   %s -> %s (%s)\n",
		start.Format(time.RFC3339), end.Format(time.RFC3339),
		pricing.DurationLabel(quote.DurationMinutes))
	fmt.Printf("Estimate: $%.2f\n", quote.Estimate)

	if *book {
		booking := pricing.NewBooking(rates, *vehicleID, start, end)
		fmt.Printf("Booked:   ref %s\n", booking.Reference)
	}
}
