package chat

import "github.com/google/uuid"

// Event names follow the product's socket protocol.
const (
	EventUserOnline     = "userOnline"
	EventUserOffline    = "userOffline"
	EventOnlineUsers    = "onlineUsers"
	EventUserTyping     = "userTyping"
	EventReceiveMessage = "receiveMessage"
	EventMessageSent    = "messageSent"
	EventOnlineStatus   = "onlineStatus"
)

// Event is a single JSON frame pushed to a live connection.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// PresencePayload announces a user going online or offline.
type PresencePayload struct {
	UserID   uuid.UUID `json:"userId"`
	IsOnline bool      `json:"isOnline"`
}

// OnlineUsersPayload carries the full online snapshot.
type OnlineUsersPayload struct {
	UserIDs []uuid.UUID `json:"userIds"`
}

// TypingPayload relays an ephemeral typing signal to its target.
type TypingPayload struct {
	UserID     uuid.UUID `json:"userId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	IsTyping   bool      `json:"isTyping"`
}

// Handle is an opaque reference to a live, addressable connection. Send
// must not block: a slow or dead connection returns an error and the
// caller treats the push as best-effort.
type Handle interface {
	Send(ev Event) error
}
