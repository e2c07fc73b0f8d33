package chat

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ByteEmpire/roompartner/internal/metrics"
)

// Broadcaster fans presence transitions out to every live connection and
// relays ephemeral typing signals to their target. All pushes are
// best-effort: a failed send is counted and dropped, never retried and
// never surfaced to the originating user.
type Broadcaster struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewBroadcaster creates a broadcaster over the given registry.
func NewBroadcaster(registry *Registry, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, logger: logger}
}

// Connect registers h as userID's live handle, announces the user online
// to every live connection, and sends the full online snapshot to the new
// connection only so its UI can initialize without waiting for events.
func (b *Broadcaster) Connect(userID uuid.UUID, h Handle) {
	b.registry.Register(userID, h)
	metrics.ConnectionsActive.Set(float64(b.registry.Count()))
	metrics.PresenceEvents.WithLabelValues("online").Inc()

	b.broadcast(Event{
		Event: EventUserOnline,
		Data:  PresencePayload{UserID: userID, IsOnline: true},
	})

	// Snapshot is taken after registration, so it includes the user itself.
	if err := h.Send(Event{
		Event: EventOnlineUsers,
		Data:  OnlineUsersPayload{UserIDs: b.registry.Snapshot()},
	}); err != nil {
		metrics.DeliveryMisses.Inc()
		b.logger.Debug().Str("user_id", userID.String()).Err(err).Msg("online snapshot dropped")
	}

	b.logger.Info().
		Str("user_id", userID.String()).
		Int("online", b.registry.Count()).
		Msg("user connected")
}

// Disconnect removes userID's registration if h is still its current
// handle, then announces the user offline. A stale disconnect racing a
// newer registration changes nothing and broadcasts nothing.
func (b *Broadcaster) Disconnect(userID uuid.UUID, h Handle) {
	if !b.registry.Deregister(userID, h) {
		return
	}
	metrics.ConnectionsActive.Set(float64(b.registry.Count()))
	metrics.PresenceEvents.WithLabelValues("offline").Inc()

	b.broadcast(Event{
		Event: EventUserOffline,
		Data:  PresencePayload{UserID: userID, IsOnline: false},
	})

	b.logger.Info().
		Str("user_id", userID.String()).
		Int("online", b.registry.Count()).
		Msg("user disconnected")
}

// RelayTyping forwards a typing signal to the target's handle, if online.
// The sender receives no echo. Nothing is persisted or queued: each new
// signal supersedes the previous one, and a dropped signal self-heals on
// the sender's next keystroke.
func (b *Broadcaster) RelayTyping(senderID, receiverID uuid.UUID, isTyping bool) {
	h, ok := b.registry.Lookup(receiverID)
	if !ok {
		return
	}
	metrics.TypingSignals.Inc()

	err := h.Send(Event{
		Event: EventUserTyping,
		Data:  TypingPayload{UserID: senderID, ReceiverID: receiverID, IsTyping: isTyping},
	})
	if err != nil {
		metrics.DeliveryMisses.Inc()
		b.logger.Debug().Str("target", receiverID.String()).Err(err).Msg("typing relay dropped")
	}
}

// SendSnapshot pushes the current online snapshot to a single handle, in
// reply to an explicit refresh request.
func (b *Broadcaster) SendSnapshot(h Handle) {
	if err := h.Send(Event{
		Event: EventOnlineUsers,
		Data:  OnlineUsersPayload{UserIDs: b.registry.Snapshot()},
	}); err != nil {
		metrics.DeliveryMisses.Inc()
	}
}

// SendOnlineStatus replies to an explicit single-user presence check.
func (b *Broadcaster) SendOnlineStatus(h Handle, userID uuid.UUID) {
	if err := h.Send(Event{
		Event: EventOnlineStatus,
		Data:  PresencePayload{UserID: userID, IsOnline: b.registry.Contains(userID)},
	}); err != nil {
		metrics.DeliveryMisses.Inc()
	}
}

// broadcast pushes ev to every live connection. Handles are snapshotted
// first; no registry lock is held while writing to transports.
func (b *Broadcaster) broadcast(ev Event) {
	for _, h := range b.registry.handles() {
		if err := h.Send(ev); err != nil {
			metrics.DeliveryMisses.Inc()
		}
	}
}
