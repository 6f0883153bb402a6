// ABOUTME: Store interface and data types for deskchat persistence
// ABOUTME: Defines User, Message structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when a requested user does not exist
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when trying to create a user with a taken username
var ErrUsernameExists = errors.New("username already exists")

// ErrNoAdmin is returned when no account is flagged as admin
var ErrNoAdmin = errors.New("no admin account")

// User represents an account that can authenticate and exchange messages.
// At most one user carries IsAdmin at routing time; every non-admin message
// is routed to that account.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash
	IsAdmin      bool
	CreatedAt    time.Time
}

// Message represents a single persisted chat message. RecipientID is always
// a concrete user ID; the "talks to the admin" routing rule is applied before
// persistence, never stored symbolically.
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Body        string
	CreatedAt   time.Time
}

// Store defines the interface for user and message persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	// FindAdmin returns the account flagged as admin. It is a point-in-time
	// query, not a cache: callers may invoke it per message and always see
	// the current account store.
	FindAdmin(ctx context.Context) (*User, error)
	ListUsers(ctx context.Context, includeAdmins bool) ([]*User, error)

	// Messages
	// SaveMessage durably appends a message. ID and CreatedAt are assigned
	// server-side when unset; the stored record is the canonical copy that
	// delivery echoes back to clients.
	SaveMessage(ctx context.Context, msg *Message) error
	// MessagesBetween returns messages exchanged between the two users in
	// either direction, ordered by timestamp.
	MessagesBetween(ctx context.Context, userA, userB string, limit int) ([]*Message, error)

	// Close releases any resources held by the store
	Close() error
}
