package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ByteEmpire/roompartner/internal/api/middleware"
	"github.com/ByteEmpire/roompartner/internal/chat"
	"github.com/ByteEmpire/roompartner/internal/models"
)

// memStore is an in-memory store.DataStore for handler tests.
type memStore struct {
	mu       sync.Mutex
	seq      int
	messages []models.Message
	users    map[uuid.UUID]*models.User

	pingErr error
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *memStore) addUser(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = &models.User{ID: id, Email: name + "@example.com", FullName: name}
	return id
}

func (s *memStore) CreateMessage(_ context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	msg := models.Message{
		ID:         fmt.Sprintf("%026d", s.seq),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  int64(1_700_000_000_000 + s.seq),
	}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *memStore) MessagesBetween(_ context.Context, userID, counterpartID uuid.UUID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.messages {
		if pairMatch(m, userID, counterpartID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) LatestMessageBetween(_ context.Context, userID, counterpartID uuid.UUID) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.Message
	for i := range s.messages {
		m := s.messages[i]
		if pairMatch(m, userID, counterpartID) && (latest == nil || m.ID > latest.ID) {
			latest = &m
		}
	}
	return latest, nil
}

func (s *memStore) CountUnread(_ context.Context, viewerID, counterpartID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, m := range s.messages {
		if m.SenderID == counterpartID && m.ReceiverID == viewerID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *memStore) MarkRead(_ context.Context, viewerID, counterpartID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *memStore) CounterpartIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *memStore) Ping(context.Context) error { return s.pingErr }

func (s *memStore) Close() {}

// nopHandle marks a user online without caring about pushed events.
type nopHandle struct{}

func (nopHandle) Send(chat.Event) error { return nil }

func pairMatch(m models.Message, a, b uuid.UUID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// testEnv wires a full handler stack over the in-memory store.
type testEnv struct {
	handler  *Handler
	store    *memStore
	registry *chat.Registry
}

func newTestEnv() *testEnv {
	st := newMemStore()
	registry := chat.NewRegistry()
	logger := zerolog.Nop()
	router := chat.NewRouter(st, st, registry, logger)
	aggregator := chat.NewAggregator(st, st, registry, logger)
	return &testEnv{
		handler:  NewHandler(router, aggregator, st, nil),
		store:    st,
		registry: registry,
	}
}

// serve runs a request through the chat routes as the given user.
func (e *testEnv) serve(userID uuid.UUID, method, target string, body io.Reader) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.UserContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/chat/messages", e.handler.SendMessage)
	r.Get("/chat/messages/{userId}", e.handler.GetMessages)
	r.Put("/chat/messages/read/{senderId}", e.handler.MarkAsRead)
	r.Get("/chat/conversations", e.handler.GetConversations)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}
