// ABOUTME: Concurrency-safe registry of which users currently have a live connection
// ABOUTME: Enforces last-connect-wins supersession and stale-disconnect guards

package presence

import (
	"log/slog"
	"sync"
)

// Conn is the handle the directory holds for a connected user. It is kept
// deliberately small so the directory and router never depend on the
// transport layer.
type Conn interface {
	// UserID returns the authenticated user this handle belongs to.
	UserID() string
	// Deliver enqueues an event for the connection's writer. It must never
	// block; it reports false when the event was dropped.
	Deliver(event any) bool
}

// Directory maps user IDs to their single active connection handle.
// At most one handle is registered per user at any instant; a newer
// connection for the same user supersedes the old one. All operations are
// individually atomic; composite sequences are the caller's responsibility
// to serialize per connection.
//
// The directory is mutated only by the connection gate. The message router
// holds a read-only view.
type Directory struct {
	mu     sync.RWMutex
	conns  map[string]Conn
	logger *slog.Logger
}

// NewDirectory creates an empty Directory. Pass nil logger for default.
func NewDirectory(logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		conns:  make(map[string]Conn),
		logger: logger.With("component", "presence"),
	}
}

// Register inserts or overwrites the entry for the user and returns the
// superseded handle, if any. A superseded handle remains connected at the
// transport layer but stops receiving routed deliveries attributed to this
// user.
func (d *Directory) Register(userID string, conn Conn) Conn {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := d.conns[userID]
	d.conns[userID] = conn

	if prev != nil {
		d.logger.Info("connection superseded", "user_id", userID, "total_online", len(d.conns))
	} else {
		d.logger.Info("user online", "user_id", userID, "total_online", len(d.conns))
	}
	return prev
}

// Unregister removes the entry for the user only if the currently registered
// handle is the given one, and reports whether it removed anything. The guard
// keeps a stale disconnect from clobbering a session registered after
// supersession.
func (d *Directory) Unregister(userID string, conn Conn) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, ok := d.conns[userID]
	if !ok || current != conn {
		return false
	}

	delete(d.conns, userID)
	d.logger.Info("user offline", "user_id", userID, "total_online", len(d.conns))
	return true
}

// Lookup returns the registered handle for the user, if any.
func (d *Directory) Lookup(userID string) (Conn, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	conn, ok := d.conns[userID]
	return conn, ok
}

// Snapshot returns the IDs of all currently registered users. Used to tell a
// newly connected admin who is online right now.
func (d *Directory) Snapshot() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.conns))
	for id := range d.conns {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of registered connections.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.conns)
}
