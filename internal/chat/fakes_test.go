package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ByteEmpire/roompartner/internal/models"
)

// fakeStore is an in-memory MessageStore + UserDirectory. IDs are
// zero-padded sequence numbers, so lexicographic order equals insertion
// order just like production ULIDs. The clock is controllable to force
// timestamp collisions.
type fakeStore struct {
	mu       sync.Mutex
	seq      int
	nowMilli int64
	messages []models.Message
	users    map[uuid.UUID]*models.User

	createErr error
	queryErr  error
	markErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nowMilli: 1_700_000_000_000,
		users:    make(map[uuid.UUID]*models.User),
	}
}

func (s *fakeStore) addUser(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = &models.User{ID: id, Email: name + "@example.com", FullName: name}
	return id
}

func (s *fakeStore) advanceClock(ms int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowMilli += ms
}

func (s *fakeStore) CreateMessage(_ context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.seq++
	msg := models.Message{
		ID:         fmt.Sprintf("%026d", s.seq),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  s.nowMilli,
	}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *fakeStore) MessagesBetween(_ context.Context, userID, counterpartID uuid.UUID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var out []models.Message
	for _, m := range s.messages {
		if between(m, userID, counterpartID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) LatestMessageBetween(_ context.Context, userID, counterpartID uuid.UUID) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var latest *models.Message
	for i := range s.messages {
		m := s.messages[i]
		if between(m, userID, counterpartID) && (latest == nil || m.ID > latest.ID) {
			latest = &m
		}
	}
	return latest, nil
}

func (s *fakeStore) CountUnread(_ context.Context, viewerID, counterpartID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return 0, s.queryErr
	}
	count := 0
	for _, m := range s.messages {
		if m.SenderID == counterpartID && m.ReceiverID == viewerID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) MarkRead(_ context.Context, viewerID, counterpartID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return 0, s.markErr
	}
	var n int64
	for i := range s.messages {
		m := &s.messages[i]
		if m.SenderID == counterpartID && m.ReceiverID == viewerID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) CounterpartIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, m := range s.messages {
		var other uuid.UUID
		switch userID {
		case m.SenderID:
			other = m.ReceiverID
		case m.ReceiverID:
			other = m.SenderID
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	return ids, nil
}

func (s *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func between(m models.Message, a, b uuid.UUID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// fakeHandle records pushed events; set dead to simulate a stale
// connection whose pushes fail.
type fakeHandle struct {
	mu     sync.Mutex
	events []Event
	dead   bool
}

func (h *fakeHandle) Send(ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dead {
		return fmt.Errorf("handle closed")
	}
	h.events = append(h.events, ev)
	return nil
}

func (h *fakeHandle) received() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}

func (h *fakeHandle) names() []string {
	var out []string
	for _, ev := range h.received() {
		out = append(out, ev.Event)
	}
	return out
}
