package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/xli340/carbn/internal/api"
	"github.com/xli340/carbn/internal/config"
	"github.com/xli340/carbn/internal/playback"
)

const frameInterval = 50 * time.Millisecond

func main() {
	vehicleID := flag.String("vehicle", "", "vehicle id to replay (required)")
	fromRaw := flag.String("from", "", "start of the window, RFC3339 (required)")
	toRaw := flag.String("to", "", "end of the window, RFC3339 (default: now)")
	speed := flag.Float64("speed", 1.0, "playback speed multiplier")
	flag.Parse()

	if *vehicleID == "" || *fromRaw == "" {
		flag.Usage()
		os.Exit(2)
	}

	from, err := time.Parse(time.RFC3339, *fromRaw)
	if err != nil {
		log.Printf("Invalid -from: %v", err)
		os.Exit(2)
	}
	to := time.Now()
	if *toRaw != "" {
		to, err = time.Parse(time.RFC3339, *toRaw)
		if err != nil {
			log.Printf("Invalid -to: %v", err)
			os.Exit(2)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client := api.NewClient(cfg.APIBaseURL)
	if _, err := client.Login(ctx, cfg.Email, cfg.Password); err != nil {
		log.Printf("Login failed: %v", err)
		os.Exit(1)
	}

	track, err := client.FetchVehicleTrack(ctx, *vehicleID, from, to)
	if err != nil {
		log.Printf("Failed to fetch track: %v", err)
		os.Exit(1)
	}
	if len(track.Points) == 0 {
		log.Printf("No track points for %s in the requested window", *vehicleID)
		os.Exit(1)
	}
	log.Printf("Replaying %d points for %s", len(track.Points), *vehicleID)

	engine := playback.NewEngine(track.Points, nil)
	if *speed != 1.0 {
		engine.AdjustSpeed(*speed - 1.0)
	}
	engine.Start()

	err = engine.Run(ctx, frameInterval, func(f playback.Frame) {
		fmt.Printf("\r[%5.1f%%] point %3d  lat=%9.5f lng=%10.5f speed=%5.1f heading=%5.1f",
			f.Progress, f.Index, f.Point.Lat, f.Point.Lng, f.Point.Speed, f.Point.Heading)
	})
	fmt.Println()
	if err != nil {
		log.Printf("Playback stopped: %v", err)
		os.Exit(1)
	}
	log.Printf("Playback complete (%s of track at %.1fx)", engine.TotalDuration(), engine.Speed())
}
