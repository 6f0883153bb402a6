// ABOUTME: Connection gate orchestrating authentication, registration and presence broadcast
// ABOUTME: Drives each connection through unauthenticated, registered and disconnected states

package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/deskchat/deskchat/internal/auth"
	"github.com/deskchat/deskchat/internal/presence"
	"github.com/deskchat/deskchat/internal/store"
)

// AdminResolver locates the current admin account for presence notifications.
type AdminResolver interface {
	FindAdmin(ctx context.Context) (*store.User, error)
}

// Gate owns the websocket handshake and the connection lifecycle. It is the
// only component that mutates the presence directory.
type Gate struct {
	verifier  auth.Verifier
	directory *presence.Directory
	router    *Router
	admins    AdminResolver
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewGate creates a Gate. Pass nil logger for default.
func NewGate(verifier auth.Verifier, directory *presence.Directory, router *Router, admins AdminResolver, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		verifier:  verifier,
		directory: directory,
		router:    router,
		admins:    admins,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement belongs to the fronting proxy; clients
			// are authenticated by token, not by origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With("component", "gate"),
	}
}

// ServeHTTP handles a websocket connection for its entire lifetime. The
// credential is verified before the upgrade, so no frame is ever read from
// an unauthenticated socket; a rejected connection never completes its
// handshake.
func (g *Gate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, err := auth.BearerToken(r)
	if err != nil {
		http.Error(w, "missing credential", http.StatusUnauthorized)
		return
	}

	principal, err := g.verifier.Verify(token)
	if err != nil {
		g.logger.Debug("rejected connection", "error", err)
		http.Error(w, "invalid credential", http.StatusUnauthorized)
		return
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrader has already written the error response
		return
	}

	// The request context ends when this handler returns; connection work
	// gets its own lifetime instead.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := newClient(principal, ws, g.logger)
	go client.writePump()

	g.register(ctx, client)
	defer g.unregister(ctx, client)
	defer client.close()

	client.readPump(ctx, g.router)
}

// register records the connection in the presence directory and broadcasts
// presence. A newly connected admin receives the full online snapshot; for
// anyone else the admin, if online, is told the user came up.
func (g *Gate) register(ctx context.Context, c *Client) {
	superseded := g.directory.Register(c.UserID(), c)
	if superseded != nil {
		// The prior handle stays open at the transport layer; it simply
		// stops receiving events attributed to this user.
		g.logger.Info("superseded previous connection", "user_id", c.UserID())
	}

	if c.principal.IsAdmin {
		c.Deliver(NewOnlineUsers(g.directory.Snapshot()))
		return
	}
	g.notifyAdmin(ctx, NewUserStatus(c.UserID(), true))
}

// unregister removes the connection, guarded against stale disconnects: a
// superseded handle closing later must not clobber the newer session. The
// presence-down notification is sent only when an entry was actually removed.
func (g *Gate) unregister(ctx context.Context, c *Client) {
	removed := g.directory.Unregister(c.UserID(), c)
	if removed && !c.principal.IsAdmin {
		g.notifyAdmin(ctx, NewUserStatus(c.UserID(), false))
	}
}

// notifyAdmin sends a presence event to the admin's connection, if online.
// Best-effort by contract: with the admin offline the event is dropped, and
// the snapshot on the admin's next connect reconciles state.
func (g *Gate) notifyAdmin(ctx context.Context, event any) {
	admin, err := g.admins.FindAdmin(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNoAdmin) {
			g.logger.Warn("resolving admin for presence notification", "error", err)
		}
		return
	}

	if conn, ok := g.directory.Lookup(admin.ID); ok {
		conn.Deliver(event)
	}
}
