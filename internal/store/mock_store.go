// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and inject persistence failures

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu         sync.RWMutex
	users      map[string]*User   // keyed by user ID
	byUsername map[string]string  // username -> user ID
	messages   []*Message         // append order

	// SaveMessageErr, when set, is returned by SaveMessage without
	// persisting. Used to exercise durability-failure paths.
	SaveMessageErr error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:      make(map[string]*User),
		byUsername: make(map[string]string),
	}
}

// CreateUser stores a new user.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byUsername[user.Username]; exists {
		return ErrUsernameExists
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	// Make a copy to avoid external modification
	u := *user
	m.users[u.ID] = &u
	m.byUsername[u.Username] = u.ID
	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// GetUserByUsername retrieves a user by username.
func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *m.users[id]
	return &u, nil
}

// FindAdmin returns the oldest account flagged as admin.
func (m *MockStore) FindAdmin(ctx context.Context) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var admin *User
	for _, user := range m.users {
		if !user.IsAdmin {
			continue
		}
		if admin == nil || user.CreatedAt.Before(admin.CreatedAt) {
			admin = user
		}
	}
	if admin == nil {
		return nil, ErrNoAdmin
	}
	u := *admin
	return &u, nil
}

// ListUsers returns users ordered by username.
func (m *MockStore) ListUsers(ctx context.Context, includeAdmins bool) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var users []*User
	for _, user := range m.users {
		if user.IsAdmin && !includeAdmins {
			continue
		}
		u := *user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// SaveMessage appends a message, assigning ID and CreatedAt when unset.
func (m *MockStore) SaveMessage(ctx context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveMessageErr != nil {
		return m.SaveMessageErr
	}

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	stored := *msg
	m.messages = append(m.messages, &stored)
	return nil
}

// MessagesBetween returns messages exchanged between two users ordered by timestamp.
func (m *MockStore) MessagesBetween(ctx context.Context, userA, userB string, limit int) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var messages []*Message
	for _, msg := range m.messages {
		if (msg.SenderID == userA && msg.RecipientID == userB) ||
			(msg.SenderID == userB && msg.RecipientID == userA) {
			c := *msg
			messages = append(messages, &c)
		}
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	if len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

// AllMessages returns every persisted message in append order.
// Test helper, not part of the Store interface.
func (m *MockStore) AllMessages() []*Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Message, 0, len(m.messages))
	for _, msg := range m.messages {
		c := *msg
		out = append(out, &c)
	}
	return out
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
