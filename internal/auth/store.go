package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xli340/carbn/internal/types"
)

// sessionKey is the fixed key the session lives under. Absence of the key
// means signed-out.
const sessionKey = "carbn:auth"

// SessionStore persists the auth token and user identity between runs. It is
// the only component allowed to touch the persisted session.
type SessionStore interface {
	Save(ctx context.Context, session *types.Session) error
	Load(ctx context.Context) (*types.Session, error)
	Clear(ctx context.Context) error
	Close() error
}

// RedisClientInterface defines the Redis operations used by the store.
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Store is the Redis-backed session store.
type Store struct {
	client RedisClientInterface
}

// New creates a session store against the given Redis address.
func New(addr string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient creates a Store with a custom RedisClientInterface (useful
// for testing).
func NewWithClient(client RedisClientInterface) *Store {
	return &Store{client: client}
}

// Save persists the session under the fixed key. The session has no expiry;
// it lives until Clear.
func (s *Store) Save(ctx context.Context, session *types.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.client.Set(ctx, sessionKey, data, 0).Err()
}

// Load returns the persisted session, or nil when signed out.
func (s *Store) Load(ctx context.Context) (*types.Session, error) {
	data, err := s.client.Get(ctx, sessionKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Clear signs out by deleting the persisted session.
func (s *Store) Clear(ctx context.Context) error {
	return s.client.Del(ctx, sessionKey).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Memory is an in-process SessionStore for setups without Redis; the session
// does not survive a restart.
type Memory struct {
	mu      sync.Mutex
	session *types.Session
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(_ context.Context, session *types.Session) error {
	copied := *session
	m.mu.Lock()
	m.session = &copied
	m.mu.Unlock()
	return nil
}

func (m *Memory) Load(_ context.Context) (*types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	copied := *m.session
	return &copied, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
