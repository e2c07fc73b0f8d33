package models

import "github.com/google/uuid"

// Message is a persisted direct message between two users. Immutable once
// created except for IsRead, which is flipped by the mark-read sweep.
type Message struct {
	ID         string    `json:"id"` // ULID
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  int64     `json:"createdAt"` // Unix ms
}
