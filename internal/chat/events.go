// ABOUTME: Wire event types exchanged over chat websocket connections
// ABOUTME: Defines the JSON envelopes for sends, deliveries, presence and errors

package chat

import (
	"errors"
	"time"

	"github.com/deskchat/deskchat/internal/store"
)

// Event type discriminators carried in the "type" field of every frame.
const (
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventOnlineUsers    = "onlineUsers"
	EventUserStatus     = "userStatus"
	EventMessagingError = "messagingError"
)

// ClientFrame is the envelope for events the core consumes from a connection.
// SenderID is never read from the frame; it always comes from the session's
// principal.
type ClientFrame struct {
	Type        string `json:"type"`
	RecipientID string `json:"recipientId,omitempty"`
	Text        string `json:"text,omitempty"`
}

// ReceiveMessageEvent echoes the canonical persisted message to sender and
// recipient, including the server-assigned ID and timestamp.
type ReceiveMessageEvent struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewReceiveMessage builds the delivery event for a persisted message.
func NewReceiveMessage(msg *store.Message) *ReceiveMessageEvent {
	return &ReceiveMessageEvent{
		Type:        EventReceiveMessage,
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Text:        msg.Body,
		Timestamp:   msg.CreatedAt,
	}
}

// OnlineUsersEvent is sent once to the admin immediately after its own
// registration, carrying a snapshot of currently online users.
type OnlineUsersEvent struct {
	Type    string   `json:"type"`
	UserIDs []string `json:"userIds"`
}

// NewOnlineUsers builds the admin presence snapshot event.
func NewOnlineUsers(userIDs []string) *OnlineUsersEvent {
	return &OnlineUsersEvent{Type: EventOnlineUsers, UserIDs: userIDs}
}

// UserStatusEvent notifies the admin of a single user's presence change.
type UserStatusEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

// NewUserStatus builds a presence change event.
func NewUserStatus(userID string, online bool) *UserStatusEvent {
	return &UserStatusEvent{Type: EventUserStatus, UserID: userID, Online: online}
}

// MessagingErrorEvent reports a failed send to the offending sender only.
type MessagingErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Error codes carried by MessagingErrorEvent.
const (
	ErrorCodeNoAdmin          = "noAdmin"
	ErrorCodeInvalidRecipient = "invalidRecipient"
	ErrorCodeEmptyMessage     = "emptyMessage"
	ErrorCodePersistFailed    = "persistFailed"
	ErrorCodeInternal         = "internal"
)

// NewMessagingError classifies a routing error into its wire code.
func NewMessagingError(err error) *MessagingErrorEvent {
	return &MessagingErrorEvent{Type: EventMessagingError, Error: errorCode(err)}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrNoAdmin):
		return ErrorCodeNoAdmin
	case errors.Is(err, ErrInvalidRecipient):
		return ErrorCodeInvalidRecipient
	case errors.Is(err, ErrEmptyMessage):
		return ErrorCodeEmptyMessage
	case errors.Is(err, ErrPersist):
		return ErrorCodePersistFailed
	default:
		return ErrorCodeInternal
	}
}
