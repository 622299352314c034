package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) (*rediscontainer.RedisContainer, string) {
	ctx := context.Background()

	container, err := rediscontainer.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections"),
		),
	)
	if err != nil {
		t.Skipf("Failed to start Redis container (docker unavailable?): %v", err)
	}

	connStr, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get Redis connection string: %v", err)
	}

	// ConnectionString returns redis://host:port; New takes a bare address.
	addr := strings.TrimPrefix(connStr, "redis://")
	return container, addr
}

func TestStore_Integration_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	container, addr := setupRedisContainer(t)
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	}()

	store, err := New(addr)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if loaded, err := store.Load(ctx); err != nil || loaded != nil {
		t.Fatalf("Load() on fresh store = %+v, %v; want nil, nil", loaded, err)
	}

	if err := store.Save(ctx, testSession()); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded == nil || loaded.Token != "tok-1" || loaded.User.ID != "u-1" {
		t.Errorf("Load() = %+v, want saved session", loaded)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if loaded, _ := store.Load(ctx); loaded != nil {
		t.Errorf("Load() after Clear() = %+v, want nil", loaded)
	}
}
