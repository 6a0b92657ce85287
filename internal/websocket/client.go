package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	readWait     = 60 * time.Second
	sendQueueLen = 256
)

// Client represents a WebSocket client connection
type Client struct {
	ID       string          // Unique client ID
	Conn     *websocket.Conn // WebSocket connection
	Send     chan []byte     // Outbound message channel
	channels []string        // Fixed at connect time
	mu       sync.Mutex      // Serializes conn writes
}

func NewClient(conn *websocket.Conn, channels ...string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		Conn:     conn,
		Send:     make(chan []byte, sendQueueLen),
		channels: channels,
	}
}

// GetChannels returns a copy of all subscribed channels
func (c *Client) GetChannels() []string {
	return append([]string(nil), c.channels...)
}

// WriteLoop handles outbound messages from the Send channel
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.Send:
			if !ok {
				c.close()
				return
			}
			c.write(websocket.TextMessage, msg)
		case <-ticker.C:
			c.write(websocket.PingMessage, []byte("ping"))
		}
	}
}

func (c *Client) write(messageType int, data []byte) {
	c.mu.Lock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.Conn.WriteMessage(messageType, data)
	c.mu.Unlock()
}

func (c *Client) close() {
	c.mu.Lock()
	_ = c.Conn.Close()
	c.mu.Unlock()
}

// SendMessage sends a message to the client's Send channel (non-blocking)
func (c *Client) SendMessage(msg []byte) {
	select {
	case c.Send <- msg:
	default:
		// Channel full, message dropped
	}
}
