package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ByteEmpire/roompartner/internal/metrics"
	"github.com/ByteEmpire/roompartner/internal/models"
	"github.com/ByteEmpire/roompartner/internal/store"
)

var (
	// ErrReceiverNotFound is returned when the user directory cannot
	// resolve the message receiver.
	ErrReceiverNotFound = errors.New("receiver not found")

	// ErrEmptyContent is returned for messages with no content.
	ErrEmptyContent = errors.New("message content is empty")
)

// Router orchestrates message operations: persist-then-notify sends,
// mark-read sweeps and history loads. Persistence is authoritative; live
// notification is best-effort and never affects the outcome of a send.
type Router struct {
	store     store.MessageStore
	directory store.UserDirectory
	registry  *Registry
	logger    zerolog.Logger
}

// NewRouter creates a message router.
func NewRouter(st store.MessageStore, dir store.UserDirectory, registry *Registry, logger zerolog.Logger) *Router {
	return &Router{store: st, directory: dir, registry: registry, logger: logger}
}

// Send validates the receiver, persists the message, then notifies the
// live connections of both parties. The persisted message is returned
// regardless of notification outcome; an offline counterpart simply sees
// the message on their next history or conversation load.
func (r *Router) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	receiver, err := r.directory.GetUserByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("resolve receiver: %w", err)
	}
	if receiver == nil {
		return nil, ErrReceiverNotFound
	}

	msg, err := r.store.CreateMessage(ctx, senderID, receiverID, content)
	if err != nil {
		// No notification runs ahead of durable state.
		return nil, fmt.Errorf("persist message: %w", err)
	}
	metrics.MessagesSent.Inc()

	r.notify(receiverID, EventReceiveMessage, msg)
	r.notify(senderID, EventMessageSent, msg)

	return msg, nil
}

// notify pushes the message to a party's live handle, if any. Failures
// are absorbed: history and the conversation list remain the source of
// truth.
func (r *Router) notify(userID uuid.UUID, event string, msg *models.Message) {
	h, ok := r.registry.Lookup(userID)
	if !ok {
		return
	}
	if err := h.Send(Event{Event: event, Data: msg}); err != nil {
		metrics.DeliveryMisses.Inc()
		r.logger.Debug().
			Str("user_id", userID.String()).
			Str("message_id", msg.ID).
			Err(err).
			Msg("live notification dropped")
	}
}

// MarkRead flips the read flag on all unread messages sent by counterpart
// to viewer. Calling it again is a no-op.
func (r *Router) MarkRead(ctx context.Context, viewerID, counterpartID uuid.UUID) error {
	n, err := r.store.MarkRead(ctx, viewerID, counterpartID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	metrics.MessagesRead.Add(float64(n))
	return nil
}

// History returns all messages between the two users in send order and
// then runs the same mark-read sweep as MarkRead for messages directed at
// userID. The coupling is deliberate read-on-view behavior: opening a
// conversation clears its unread count. Note the returned messages carry
// the read flags as loaded, before the sweep.
func (r *Router) History(ctx context.Context, userID, counterpartID uuid.UUID) ([]models.Message, error) {
	messages, err := r.store.MessagesBetween(ctx, userID, counterpartID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	if err := r.MarkRead(ctx, userID, counterpartID); err != nil {
		return nil, err
	}

	return messages, nil
}
