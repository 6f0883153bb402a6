// ABOUTME: Tests for the SQLite store implementation
// ABOUTME: Covers user CRUD, admin lookup, message persistence and history queries

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetUser(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := &User{
		Username:     "maria",
		PasswordHash: "hash",
	}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "maria", got.Username)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.False(t, got.IsAdmin)
	assert.WithinDuration(t, user.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestGetUser_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetUser(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByUsername(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := &User{Username: "maria", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, user))

	got, err := s.GetUserByUsername(ctx, "maria")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &User{Username: "maria", PasswordHash: "a"}))

	err := s.CreateUser(ctx, &User{Username: "maria", PasswordHash: "b"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestFindAdmin(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.FindAdmin(ctx)
	assert.ErrorIs(t, err, ErrNoAdmin)

	require.NoError(t, s.CreateUser(ctx, &User{Username: "maria", PasswordHash: "a"}))
	_, err = s.FindAdmin(ctx)
	assert.ErrorIs(t, err, ErrNoAdmin)

	admin := &User{Username: "james", PasswordHash: "b", IsAdmin: true}
	require.NoError(t, s.CreateUser(ctx, admin))

	got, err := s.FindAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
	assert.True(t, got.IsAdmin)
}

func TestFindAdmin_OldestWins(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	older := &User{Username: "first", PasswordHash: "a", IsAdmin: true, CreatedAt: base}
	newer := &User{Username: "second", PasswordHash: "b", IsAdmin: true, CreatedAt: base.Add(time.Hour)}
	require.NoError(t, s.CreateUser(ctx, newer))
	require.NoError(t, s.CreateUser(ctx, older))

	got, err := s.FindAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)
}

func TestListUsers(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &User{Username: "zoe", PasswordHash: "a"}))
	require.NoError(t, s.CreateUser(ctx, &User{Username: "alice", PasswordHash: "b"}))
	require.NoError(t, s.CreateUser(ctx, &User{Username: "james", PasswordHash: "c", IsAdmin: true}))

	users, err := s.ListUsers(ctx, false)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "zoe", users[1].Username)

	all, err := s.ListUsers(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveMessage_AssignsIDAndTimestamp(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sender := &User{Username: "maria", PasswordHash: "a"}
	recipient := &User{Username: "james", PasswordHash: "b", IsAdmin: true}
	require.NoError(t, s.CreateUser(ctx, sender))
	require.NoError(t, s.CreateUser(ctx, recipient))

	msg := &Message{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Body:        "hello",
	}
	require.NoError(t, s.SaveMessage(ctx, msg))
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestMessagesBetween(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := &User{Username: "maria", PasswordHash: "a"}
	admin := &User{Username: "james", PasswordHash: "b", IsAdmin: true}
	other := &User{Username: "zoe", PasswordHash: "c"}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NoError(t, s.CreateUser(ctx, admin))
	require.NoError(t, s.CreateUser(ctx, other))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	save := func(from, to string, body string, at time.Time) {
		require.NoError(t, s.SaveMessage(ctx, &Message{
			SenderID:    from,
			RecipientID: to,
			Body:        body,
			CreatedAt:   at,
		}))
	}

	save(user.ID, admin.ID, "first", base)
	save(admin.ID, user.ID, "second", base.Add(time.Second))
	save(user.ID, admin.ID, "third", base.Add(2*time.Second))
	// A different conversation must not leak into the thread.
	save(other.ID, admin.ID, "unrelated", base.Add(time.Second))

	messages, err := s.MessagesBetween(ctx, user.ID, admin.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Body)
	assert.Equal(t, "second", messages[1].Body)
	assert.Equal(t, "third", messages[2].Body)

	// Argument order does not matter.
	reversed, err := s.MessagesBetween(ctx, admin.ID, user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, reversed, 3)
}

func TestMessagesBetween_SubsecondOrdering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := &User{Username: "maria", PasswordHash: "a"}
	admin := &User{Username: "james", PasswordHash: "b", IsAdmin: true}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NoError(t, s.CreateUser(ctx, admin))

	// A whole-second timestamp followed by a fractional one in the same
	// second; the stored text must still sort in timestamp order.
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.SaveMessage(ctx, &Message{
		SenderID:    user.ID,
		RecipientID: admin.ID,
		Body:        "first",
		CreatedAt:   base,
	}))
	require.NoError(t, s.SaveMessage(ctx, &Message{
		SenderID:    admin.ID,
		RecipientID: user.ID,
		Body:        "second",
		CreatedAt:   base.Add(500 * time.Millisecond),
	}))

	messages, err := s.MessagesBetween(ctx, user.ID, admin.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Body)
	assert.Equal(t, "second", messages[1].Body)
}

func TestFindAdmin_SubsecondTieBreak(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	older := &User{Username: "first", PasswordHash: "a", IsAdmin: true, CreatedAt: base}
	newer := &User{Username: "second", PasswordHash: "b", IsAdmin: true, CreatedAt: base.Add(500 * time.Millisecond)}
	require.NoError(t, s.CreateUser(ctx, newer))
	require.NoError(t, s.CreateUser(ctx, older))

	got, err := s.FindAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)
}

func TestMessagesBetween_Limit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := &User{Username: "maria", PasswordHash: "a"}
	admin := &User{Username: "james", PasswordHash: "b", IsAdmin: true}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NoError(t, s.CreateUser(ctx, admin))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveMessage(ctx, &Message{
			SenderID:    user.ID,
			RecipientID: admin.ID,
			Body:        fmt.Sprintf("msg-%d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	messages, err := s.MessagesBetween(ctx, user.ID, admin.ID, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "msg-0", messages[0].Body)
	assert.Equal(t, "msg-1", messages[1].Body)
}

func TestMessagesBetween_Empty(t *testing.T) {
	s := createTestStore(t)

	messages, err := s.MessagesBetween(context.Background(), "a", "b", 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
