// ABOUTME: Per-message pipeline that resolves the effective recipient, persists and delivers
// ABOUTME: Non-admin senders always address the admin; the admin addresses a specific user

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deskchat/deskchat/internal/auth"
	"github.com/deskchat/deskchat/internal/presence"
	"github.com/deskchat/deskchat/internal/store"
)

// Router errors
var (
	// ErrNoAdmin means a non-admin sent a message while no admin account exists
	ErrNoAdmin = errors.New("no admin account to route to")

	// ErrInvalidRecipient means an admin send named a missing or unknown user
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrEmptyMessage means the message text was empty
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrPersist wraps Message Store failures; the message was not delivered
	ErrPersist = errors.New("message could not be persisted")
)

// UserDirectory provides the account lookups the router needs. FindAdmin is
// a point-in-time query invoked per message, never cached.
type UserDirectory interface {
	FindAdmin(ctx context.Context) (*store.User, error)
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// MessageStore durably appends message records.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *store.Message) error
}

// PresenceLookup is the read-only view of the presence directory the router
// holds. The router never registers or unregisters connections.
type PresenceLookup interface {
	Lookup(userID string) (presence.Conn, bool)
}

// Router resolves the effective recipient of each message, persists it, and
// fans delivery out to whichever of sender and recipient are online.
type Router struct {
	users    UserDirectory
	messages MessageStore
	presence PresenceLookup
	logger   *slog.Logger
}

// NewRouter creates a Router. Pass nil logger for default.
func NewRouter(users UserDirectory, messages MessageStore, pres PresenceLookup, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		users:    users,
		messages: messages,
		presence: pres,
		logger:   logger.With("component", "router"),
	}
}

// Route handles one send from an authenticated, registered session.
//
// Durability strictly precedes delivery: a message that failed to persist is
// never delivered. Delivery to an offline party is silently skipped; there is
// no outbox or retry. The returned message is the canonical persisted record.
func (r *Router) Route(ctx context.Context, sender *auth.Principal, recipientID, text string) (*store.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	resolved, err := r.resolveRecipient(ctx, sender, recipientID)
	if err != nil {
		return nil, err
	}

	msg := &store.Message{
		SenderID:    sender.ID,
		RecipientID: resolved,
		Body:        text,
	}
	if err := r.messages.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	r.deliver(msg)
	return msg, nil
}

// resolveRecipient applies the routing rule: non-admin senders always talk to
// the admin regardless of any client-supplied recipient; the admin must name
// an existing user.
func (r *Router) resolveRecipient(ctx context.Context, sender *auth.Principal, recipientID string) (string, error) {
	if !sender.IsAdmin {
		admin, err := r.users.FindAdmin(ctx)
		if errors.Is(err, store.ErrNoAdmin) {
			return "", ErrNoAdmin
		}
		if err != nil {
			return "", fmt.Errorf("resolving admin: %w", err)
		}
		return admin.ID, nil
	}

	if recipientID == "" {
		return "", ErrInvalidRecipient
	}
	recipient, err := r.users.GetUser(ctx, recipientID)
	if errors.Is(err, store.ErrUserNotFound) {
		return "", fmt.Errorf("%w: %s", ErrInvalidRecipient, recipientID)
	}
	if err != nil {
		return "", fmt.Errorf("looking up recipient: %w", err)
	}
	return recipient.ID, nil
}

// deliver echoes the persisted record to the sender's and the recipient's
// currently registered handles. When both resolve to the same physical
// handle, it is delivered once.
func (r *Router) deliver(msg *store.Message) {
	event := NewReceiveMessage(msg)

	senderConn, senderOnline := r.presence.Lookup(msg.SenderID)
	if senderOnline {
		senderConn.Deliver(event)
	}

	recipientConn, recipientOnline := r.presence.Lookup(msg.RecipientID)
	if recipientOnline && (!senderOnline || recipientConn != senderConn) {
		recipientConn.Deliver(event)
	}

	r.logger.Debug("message routed",
		"message_id", msg.ID,
		"sender", msg.SenderID,
		"recipient", msg.RecipientID,
		"sender_online", senderOnline,
		"recipient_online", recipientOnline,
	)
}
