package feed

import (
	"fmt"
	"log"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xli340/carbn/internal/snapshot"
	"github.com/xli340/carbn/internal/types"
)

// Status is the connection state of the live feed.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Application close codes reserved by the platform to mean "authorization
// revoked, do not reconnect".
const (
	CloseUnauthorized = 4001
	CloseForbidden    = 4003
)

const (
	baseReconnectDelay = time.Second
	maxReconnectDelay  = 30 * time.Second
)

// backoffDelay returns the exponential reconnect delay for the given retry
// count, capped at maxReconnectDelay.
func backoffDelay(retryCount int) time.Duration {
	d := baseReconnectDelay
	for i := 0; i < retryCount; i++ {
		d *= 2
		if d >= maxReconnectDelay {
			return maxReconnectDelay
		}
	}
	return d
}

// Config configures a Channel. URL is the feed endpoint without the token,
// e.g. "wss://api-dev.carbn.nz/api/v1/fleet/live". Token is the bearer token;
// the channel never connects without one. Accepted updates patch Store.
// OnUpdate, OnStatus and OnDropped are optional observers.
type Config struct {
	URL       string
	Token     string
	Store     *snapshot.Store
	OnUpdate  func(types.PositionUpdate)
	OnStatus  func(Status)
	OnDropped func()
}

// Channel maintains the persistent live-position connection: connect,
// authenticate, subscribe by vehicle-id set, parse inbound frames, reconnect
// with exponential backoff. At most one underlying connection is live at a
// time.
type Channel struct {
	cfg    Config
	dialer *websocket.Dialer

	mu             sync.Mutex
	conn           *websocket.Conn
	status         Status
	connecting     bool
	retryCount     int
	desired        []string
	subscribed     map[string]struct{}
	reconnectTimer *time.Timer
	closed         bool
}

// New creates a Channel. It does not connect; call Connect.
func New(cfg Config) *Channel {
	return &Channel{
		cfg:        cfg,
		dialer:     websocket.DefaultDialer,
		status:     StatusDisconnected,
		subscribed: make(map[string]struct{}),
	}
}

// Connect opens the feed connection. It is a no-op without a token, after
// Close, while a connect is in flight, or when already connected.
func (c *Channel) Connect() {
	c.mu.Lock()
	if c.closed || c.cfg.Token == "" || c.connecting || c.conn != nil {
		c.mu.Unlock()
		return
	}
	c.connecting = true
	if c.status != StatusConnected {
		c.setStatusLocked(StatusConnecting)
	}
	c.mu.Unlock()

	go c.dial()
}

func (c *Channel) dial() {
	conn, resp, err := c.dialer.Dial(c.feedURL(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		log.Printf("feed: connect failed: %v", err)
		c.mu.Lock()
		c.connecting = false
		if !c.closed {
			c.scheduleReconnectLocked()
		}
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.connecting = false
	c.retryCount = 0
	c.setStatusLocked(StatusConnected)

	// Subscribe to the current vehicle set straight away.
	c.subscribed = make(map[string]struct{})
	if len(c.desired) > 0 {
		if err := conn.WriteJSON(command{Action: actionSubscribe, VehicleIDs: c.desired}); err != nil {
			log.Printf("feed: subscribe failed: %v", err)
		} else {
			for _, id := range c.desired {
				c.subscribed[id] = struct{}{}
			}
		}
	}
	c.mu.Unlock()

	go c.readLoop(conn)
}

func (c *Channel) feedURL() string {
	u := c.cfg.URL
	if c.cfg.Token != "" {
		sep := "?"
		if parsed, err := url.Parse(u); err == nil && parsed.RawQuery != "" {
			sep = "&"
		}
		u = fmt.Sprintf("%s%stoken=%s", u, sep, url.QueryEscape(c.cfg.Token))
	}
	return u
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(conn, err)
			return
		}

		update, ok := ParsePositionUpdate(data)
		if !ok {
			// Best-effort telemetry: drop and keep reading.
			log.Printf("feed: dropping malformed frame (%d bytes)", len(data))
			if c.cfg.OnDropped != nil {
				c.cfg.OnDropped()
			}
			continue
		}

		if c.cfg.Store != nil {
			c.cfg.Store.Merge(update)
		}
		if c.cfg.OnUpdate != nil {
			c.cfg.OnUpdate(update)
		}
	}
}

func (c *Channel) handleClose(conn *websocket.Conn, err error) {
	conn.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != conn {
		// Superseded by a newer connection or a deliberate Close.
		return
	}
	c.conn = nil
	c.subscribed = make(map[string]struct{})

	if c.closed {
		return
	}

	if websocket.IsCloseError(err, CloseUnauthorized, CloseForbidden) {
		// Authorization revoked: fatal to the session, never reconnect.
		log.Printf("feed: authorization revoked, stopping: %v", err)
		c.setStatusLocked(StatusDisconnected)
		return
	}

	log.Printf("feed: connection lost: %v", err)
	c.scheduleReconnectLocked()
}

func (c *Channel) scheduleReconnectLocked() {
	c.setStatusLocked(StatusReconnecting)

	delay := backoffDelay(c.retryCount)
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
	}
	c.reconnectTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.retryCount++
		c.mu.Unlock()
		c.Connect()
	})
}

// SetVehicleIDs updates the subscription set to the given vehicle ids. While
// connected, only the diff against the last-sent set is transmitted; an
// unchanged set sends nothing.
func (c *Channel) SetVehicleIDs(ids []string) {
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for id := range unique {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.desired = sorted
	if c.conn == nil {
		return
	}

	var added, removed []string
	for _, id := range sorted {
		if _, ok := c.subscribed[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range c.subscribed {
		if _, ok := unique[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)

	// Record each diff as soon as its write lands, so a failed write never
	// leaves already-delivered commands marked unsent.
	if len(added) > 0 {
		if err := c.conn.WriteJSON(command{Action: actionSubscribe, VehicleIDs: added}); err != nil {
			log.Printf("feed: subscribe failed: %v", err)
			return
		}
		for _, id := range added {
			c.subscribed[id] = struct{}{}
		}
	}
	if len(removed) > 0 {
		if err := c.conn.WriteJSON(command{Action: actionUnsubscribe, VehicleIDs: removed}); err != nil {
			log.Printf("feed: unsubscribe failed: %v", err)
			return
		}
		for _, id := range removed {
			delete(c.subscribed, id)
		}
	}
}

// Status returns the current connection status.
func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Channel) setStatusLocked(s Status) {
	if c.status == s {
		return
	}
	c.status = s
	if c.cfg.OnStatus != nil {
		// Observers must not call back into the channel.
		c.cfg.OnStatus(s)
	}
}

// Close tears the channel down deliberately: the pending reconnect timer is
// cancelled and the socket closed without triggering the reconnect path.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.setStatusLocked(StatusDisconnected)
}
