package chat

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ByteEmpire/roompartner/internal/models"
	"github.com/ByteEmpire/roompartner/internal/store"
)

// Aggregator derives the per-user conversation list by merging the
// message store with live registry state. The list is recomputed from the
// collaborators on every call; nothing is cached.
type Aggregator struct {
	store     store.MessageStore
	directory store.UserDirectory
	registry  *Registry
	logger    zerolog.Logger
}

// NewAggregator creates a conversation aggregator.
func NewAggregator(st store.MessageStore, dir store.UserDirectory, registry *Registry, logger zerolog.Logger) *Aggregator {
	return &Aggregator{store: st, directory: dir, registry: registry, logger: logger}
}

// ListConversations builds one conversation per counterpart the user has
// ever exchanged messages with, in either direction. Ordering: most
// recent message first, counterparts without any message last, ties
// broken by counterpart ID for determinism. The typing flag is always
// false here; it is populated client-side from live relays.
func (a *Aggregator) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	counterparts, err := a.store.CounterpartIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list counterparts: %w", err)
	}

	conversations := make([]models.Conversation, 0, len(counterparts))
	for _, counterpartID := range counterparts {
		user, err := a.directory.GetUserByID(ctx, counterpartID)
		if err != nil {
			return nil, fmt.Errorf("resolve counterpart: %w", err)
		}
		if user == nil {
			// Counterpart deleted after exchanging messages; skip rather
			// than failing the whole list.
			a.logger.Warn().
				Str("user_id", counterpartID.String()).
				Msg("counterpart missing from directory, skipping conversation")
			continue
		}

		last, err := a.store.LatestMessageBetween(ctx, userID, counterpartID)
		if err != nil {
			return nil, fmt.Errorf("latest message: %w", err)
		}

		unread, err := a.store.CountUnread(ctx, userID, counterpartID)
		if err != nil {
			return nil, fmt.Errorf("count unread: %w", err)
		}

		conversations = append(conversations, models.Conversation{
			UserID:      counterpartID,
			UserName:    user.DisplayName(),
			UserImage:   user.ProfileImage,
			LastMessage: last,
			UnreadCount: unread,
			IsOnline:    a.registry.Contains(counterpartID),
		})
	}

	sortConversations(conversations)
	return conversations, nil
}

// sortConversations orders by most-recent-message timestamp descending.
// Conversations with no message sort last. Ties fall back to counterpart
// ID ascending so the order is deterministic.
func sortConversations(conversations []models.Conversation) {
	sort.Slice(conversations, func(i, j int) bool {
		a, b := conversations[i], conversations[j]
		switch {
		case a.LastMessage == nil && b.LastMessage == nil:
			return a.UserID.String() < b.UserID.String()
		case a.LastMessage == nil:
			return false
		case b.LastMessage == nil:
			return true
		case a.LastMessage.CreatedAt != b.LastMessage.CreatedAt:
			return a.LastMessage.CreatedAt > b.LastMessage.CreatedAt
		default:
			return a.UserID.String() < b.UserID.String()
		}
	})
}
