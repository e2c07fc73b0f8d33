package models

import "github.com/google/uuid"

// Conversation is the derived per-counterpart summary returned by the
// conversation list. It is recomputed on every call, never persisted.
type Conversation struct {
	UserID      uuid.UUID `json:"userId"`
	UserName    string    `json:"userName"`
	UserImage   string    `json:"userImage,omitempty"`
	LastMessage *Message  `json:"lastMessage"`
	UnreadCount int       `json:"unreadCount"`
	IsOnline    bool      `json:"isOnline"`
	// IsTyping is populated client-side from live typing relays; the
	// aggregate always reports false.
	IsTyping bool `json:"isTyping"`
}
