package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/xli340/carbn/internal/types"
)

// Default viewport: New Zealand, SW (-47.5, 166.0) to NE (-34.0, 178.6).
var defaultBounds = types.Bounds{
	SW: types.LatLng{Lat: -47.5, Lng: 166.0},
	NE: types.LatLng{Lat: -34.0, Lng: 178.6},
}

// Config holds the application configuration
type Config struct {
	APIBaseURL string
	WSURL      string
	Email      string
	Password   string

	Bounds          types.Bounds
	RefreshInterval time.Duration

	// Optional integrations; empty means disabled.
	NATSURL     string
	RedisAddr   string
	MetricsAddr string
}

// Load loads the configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	apiBase := os.Getenv("API_BASE_URL")
	if apiBase == "" {
		return nil, fmt.Errorf("API_BASE_URL environment variable is required")
	}

	wsURL := os.Getenv("WS_URL")
	if wsURL == "" {
		// Derive the feed endpoint from the API base.
		wsURL = strings.Replace(apiBase, "http", "ws", 1) + "/api/v1/fleet/live"
	}

	email := os.Getenv("EMAIL")
	password := os.Getenv("PASSWORD")
	if email == "" || password == "" {
		return nil, fmt.Errorf("EMAIL and PASSWORD environment variables are required")
	}

	bounds := defaultBounds
	if raw := os.Getenv("BOUNDS"); raw != "" {
		parsed, err := parseBounds(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BOUNDS: %w", err)
		}
		bounds = parsed
	}

	refresh := 60 * time.Second
	if raw := os.Getenv("REFRESH_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid REFRESH_INTERVAL %q", raw)
		}
		refresh = d
	}

	return &Config{
		APIBaseURL:      apiBase,
		WSURL:           wsURL,
		Email:           email,
		Password:        password,
		Bounds:          bounds,
		RefreshInterval: refresh,
		NATSURL:         os.Getenv("NATS_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
	}, nil
}

// parseBounds parses "swLat,swLng,neLat,neLng".
func parseBounds(raw string) (types.Bounds, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return types.Bounds{}, fmt.Errorf("want swLat,swLng,neLat,neLng, got %q", raw)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return types.Bounds{}, fmt.Errorf("bad coordinate %q: %w", p, err)
		}
		vals[i] = v
	}
	b := types.Bounds{
		SW: types.LatLng{Lat: vals[0], Lng: vals[1]},
		NE: types.LatLng{Lat: vals[2], Lng: vals[3]},
	}
	if b.SW.Lat > b.NE.Lat || b.SW.Lng > b.NE.Lng {
		return types.Bounds{}, fmt.Errorf("south-west corner must be south and west of north-east, got %q", raw)
	}
	return b, nil
}
