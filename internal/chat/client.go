// ABOUTME: A single websocket chat connection with split read/write pumps
// ABOUTME: The write pump is the sole socket writer; deliveries are best-effort

package chat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/deskchat/deskchat/internal/auth"
)

// sendBufferSize is the per-connection event buffer. Deliveries beyond it
// are dropped rather than blocking the sender.
const sendBufferSize = 64

// Client is one live websocket connection bound to a verified principal.
// Splitting reads and writes into separate goroutines keeps a slow browser
// from blocking message routing.
type Client struct {
	principal *auth.Principal
	ws        *websocket.Conn
	send      chan any
	mu        sync.RWMutex
	closed    bool
	logger    *slog.Logger
}

func newClient(principal *auth.Principal, ws *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		principal: principal,
		ws:        ws,
		send:      make(chan any, sendBufferSize),
		logger:    logger.With("user_id", principal.ID, "username", principal.Username),
	}
}

// UserID returns the authenticated user behind this connection.
func (c *Client) UserID() string {
	return c.principal.ID
}

// Deliver enqueues an event for the write pump without blocking.
// Returns false if the connection is closed or its buffer is full.
func (c *Client) Deliver(event any) bool {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return false
	}
	// Hold the read lock while sending to prevent close during send
	select {
	case c.send <- event:
		c.mu.RUnlock()
		return true
	default:
		c.mu.RUnlock()
		c.logger.Debug("dropped event for slow connection")
		return false
	}
}

// close marks the client closed and shuts down the write pump.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump drains the send channel to the socket until the client closes.
func (c *Client) writePump() {
	defer c.ws.Close()

	for event := range c.send {
		if err := c.ws.WriteJSON(event); err != nil {
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump processes inbound frames sequentially until the transport closes,
// so a connection's own events are strictly ordered. Send failures are
// reported to this sender only and never terminate the connection.
func (c *Client) readPump(ctx context.Context, router *Router) {
	for {
		var frame ClientFrame
		if err := c.ws.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case EventSendMessage:
			if _, err := router.Route(ctx, c.principal, frame.RecipientID, frame.Text); err != nil {
				c.logger.Debug("send failed", "error", err)
				c.Deliver(NewMessagingError(err))
			}
		default:
			c.logger.Debug("ignoring unknown frame", "type", frame.Type)
		}
	}
}
