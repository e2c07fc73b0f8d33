package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/ByteEmpire/roompartner/internal/models"
)

// MessageStore defines the persistence contract for direct messages.
// Ordering is part of the contract: message IDs are monotonic ULIDs
// assigned at insert, so ascending ID order equals insertion order even
// when two inserts land on the same wall-clock millisecond.
type MessageStore interface {
	// CreateMessage persists a new unread message and returns it with its
	// assigned ID and timestamp.
	CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error)

	// MessagesBetween returns all messages exchanged between the two users,
	// in either direction, oldest first.
	MessagesBetween(ctx context.Context, userID, counterpartID uuid.UUID) ([]models.Message, error)

	// LatestMessageBetween returns the most recent message between the two
	// users, or nil if they have never exchanged one.
	LatestMessageBetween(ctx context.Context, userID, counterpartID uuid.UUID) (*models.Message, error)

	// CountUnread counts unread messages sent by counterpart to viewer.
	CountUnread(ctx context.Context, viewerID, counterpartID uuid.UUID) (int, error)

	// MarkRead flips the read flag on all unread messages sent by
	// counterpart to viewer. Idempotent; returns rows affected.
	MarkRead(ctx context.Context, viewerID, counterpartID uuid.UUID) (int64, error)

	// CounterpartIDs returns the distinct set of users the given user has
	// exchanged messages with, in either direction.
	CounterpartIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// UserDirectory resolves user IDs to minimal profile fields. A miss is a
// normal result, reported as (nil, nil).
type UserDirectory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// DataStore is the full persistence surface. Both PostgresStore and
// SQLiteStore implement this interface.
type DataStore interface {
	MessageStore
	UserDirectory

	Close()
	Ping(ctx context.Context) error
}
