package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xli340/carbn/internal/api"
	"github.com/xli340/carbn/internal/auth"
	"github.com/xli340/carbn/internal/config"
	"github.com/xli340/carbn/internal/feed"
	"github.com/xli340/carbn/internal/geo"
	"github.com/xli340/carbn/internal/metrics"
	"github.com/xli340/carbn/internal/nats"
	"github.com/xli340/carbn/internal/snapshot"
	"github.com/xli340/carbn/internal/stats"
	"github.com/xli340/carbn/internal/types"
)

// Monitor holds the wired components of the daemon.
type Monitor struct {
	cfg     *config.Config
	client  *api.Client
	store   *snapshot.Store
	channel *feed.Channel
	natsPub *nats.Client // nil when disabled
	metrics *metrics.Collector
	stats   *stats.Stats
}

// setupSession signs in, reusing a persisted session when one is present and
// still accepted by the platform.
func setupSession(ctx context.Context, client *api.Client, sessions auth.SessionStore, email, password string) (*types.Session, error) {
	if saved, err := sessions.Load(ctx); err != nil {
		log.Printf("Warning: Failed to load saved session: %v", err)
	} else if saved != nil {
		client.SetToken(saved.Token)
		log.Printf("Reusing saved session for %s", saved.User.Email)
		return saved, nil
	}

	session, err := client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if err := sessions.Save(ctx, session); err != nil {
		log.Printf("Warning: Failed to persist session: %v", err)
	}
	return session, nil
}

// refresh runs one partitioned viewport query and replaces the snapshot. On
// failure the previous snapshot is kept.
func (m *Monitor) refresh(ctx context.Context) {
	m.stats.IncrementFleetQueries()
	m.metrics.QueryLeaves.Add(float64(len(geo.SplitBounds(m.cfg.Bounds))))
	start := time.Now()

	set, err := m.client.FetchVehiclesWithinBounds(ctx, m.cfg.Bounds)
	m.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.stats.IncrementQueryFailures()
		m.metrics.FleetQueries.WithLabelValues("error").Inc()
		log.Printf("Viewport query failed, keeping previous snapshot: %v", err)
		return
	}
	m.metrics.FleetQueries.WithLabelValues("ok").Inc()

	m.store.Replace(set.Vehicles)
	m.stats.SetVehiclesInView(uint64(set.Count))
	m.metrics.SnapshotVehicles.Set(float64(set.Count))

	// Follow the snapshot: the feed subscription always matches the
	// vehicles currently in view.
	m.channel.SetVehicleIDs(m.store.IDs())
}

// run drives the refresh ticker until the context is cancelled.
func (m *Monitor) run(ctx context.Context) {
	m.refresh(ctx)
	m.channel.Connect()

	ticker := time.NewTicker(m.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.refresh(ctx)
		}
	}
}

func (m *Monitor) onUpdate(u types.PositionUpdate) {
	m.stats.IncrementAcceptedUpdates()
	m.stats.UpdateLastUpdateTime()
	m.metrics.FeedMessages.Inc()
	m.metrics.SnapshotVehicles.Set(float64(m.store.Count()))

	if m.natsPub != nil {
		if err := m.natsPub.PublishPositionUpdate(&u); err != nil {
			m.metrics.NATSPublishErrs.Inc()
			log.Printf("Warning: Failed to republish update: %v", err)
			return
		}
		m.metrics.NATSPublished.Inc()
	}
}

func (m *Monitor) onStatus(s feed.Status) {
	log.Printf("Feed status: %s", s)
	switch s {
	case feed.StatusConnected:
		m.metrics.FeedConnected.Set(1)
	case feed.StatusReconnecting:
		m.stats.IncrementReconnects()
		m.metrics.FeedReconnects.Inc()
		m.metrics.FeedConnected.Set(0)
	default:
		m.metrics.FeedConnected.Set(0)
	}
}

func (m *Monitor) onDropped() {
	m.stats.IncrementDroppedFrames()
	m.metrics.FeedDropped.Inc()
}

func newSessionStore(redisAddr string) auth.SessionStore {
	if redisAddr == "" {
		return auth.NewMemory()
	}
	store, err := auth.New(redisAddr)
	if err != nil {
		log.Printf("Warning: Redis unavailable, session will not persist: %v", err)
		return auth.NewMemory()
	}
	return store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := newSessionStore(cfg.RedisAddr)
	defer sessions.Close()

	client := api.NewClient(cfg.APIBaseURL)
	session, err := setupSession(ctx, client, sessions, cfg.Email, cfg.Password)
	if err != nil {
		log.Printf("Failed to establish session: %v", err)
		os.Exit(1)
	}

	var natsPub *nats.Client
	if cfg.NATSURL != "" {
		natsPub, err = nats.New(cfg.NATSURL)
		if err != nil {
			log.Printf("Failed to connect to NATS: %v", err)
			os.Exit(1)
		}
		defer natsPub.Close()
	}

	collector := metrics.NewCollector(cfg.RefreshInterval)
	if cfg.MetricsAddr != "" {
		srv := collector.Serve(cfg.MetricsAddr)
		defer srv.Close()
	}

	m := &Monitor{
		cfg:     cfg,
		client:  client,
		store:   snapshot.New(),
		natsPub: natsPub,
		metrics: collector,
		stats:   stats.New(),
	}
	m.channel = feed.New(feed.Config{
		URL:       cfg.WSURL,
		Token:     session.Token,
		Store:     m.store,
		OnUpdate:  m.onUpdate,
		OnStatus:  m.onStatus,
		OnDropped: m.onDropped,
	})
	defer m.channel.Close()

	go m.stats.StartReporting(ctx, time.Minute)
	go m.run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	cancel()
}
