package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/xli340/carbn/internal/types"
)

const (
	// SubjectPositions carries accepted live position updates for
	// downstream consumers.
	SubjectPositions = "fleet.positions"

	streamName = "FLEET_POSITIONS"
)

// Client republishes accepted feed updates to NATS JetStream.
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New connects to NATS and ensures the positions stream exists.
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{SubjectPositions},
		Storage:  nats.FileStorage,
		MaxAge:   24 * time.Hour,
	})
	if err != nil && !strings.Contains(err.Error(), "stream name already in use") {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{
		conn: nc,
		js:   js,
	}, nil
}

// PublishPositionUpdate publishes one accepted position update.
func (c *Client) PublishPositionUpdate(u *types.PositionUpdate) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal position update: %w", err)
	}

	if _, err := c.js.Publish(SubjectPositions, data); err != nil {
		return fmt.Errorf("failed to publish position update: %w", err)
	}
	return nil
}

// SubscribePositions subscribes to the position stream.
func (c *Client) SubscribePositions(handler func(*types.PositionUpdate)) error {
	_, err := c.js.Subscribe(SubjectPositions, func(msg *nats.Msg) {
		var update types.PositionUpdate
		if err := json.Unmarshal(msg.Data, &update); err != nil {
			fmt.Printf("Error unmarshaling position update: %v\n", err)
			return
		}
		handler(&update)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

// Close closes the NATS connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
