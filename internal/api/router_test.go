package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ByteEmpire/roompartner/internal/auth"
	"github.com/ByteEmpire/roompartner/internal/chat"
	"github.com/ByteEmpire/roompartner/internal/handlers"
	"github.com/ByteEmpire/roompartner/internal/models"
	"github.com/ByteEmpire/roompartner/internal/ws"
)

var routerSecret = []byte("router-test-secret")

// routerStore is an in-memory store.DataStore backing the assembled
// router under test.
type routerStore struct {
	mu       sync.Mutex
	seq      int
	messages []models.Message
	users    map[uuid.UUID]*models.User
}

func newRouterStore() *routerStore {
	return &routerStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *routerStore) addUser(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = &models.User{ID: id, Email: name + "@example.com", FullName: name}
	return id
}

func (s *routerStore) CreateMessage(_ context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
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

func (s *routerStore) MessagesBetween(_ context.Context, userID, counterpartID uuid.UUID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.messages {
		if (m.SenderID == userID && m.ReceiverID == counterpartID) ||
			(m.SenderID == counterpartID && m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *routerStore) LatestMessageBetween(_ context.Context, userID, counterpartID uuid.UUID) (*models.Message, error) {
	messages, err := s.MessagesBetween(nil, userID, counterpartID)
	if err != nil || len(messages) == 0 {
		return nil, err
	}
	return &messages[len(messages)-1], nil
}

func (s *routerStore) CountUnread(_ context.Context, viewerID, counterpartID uuid.UUID) (int, error) {
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

func (s *routerStore) MarkRead(_ context.Context, viewerID, counterpartID uuid.UUID) (int64, error) {
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

func (s *routerStore) CounterpartIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
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

func (s *routerStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *routerStore) Ping(context.Context) error { return nil }

func (s *routerStore) Close() {}

// newRouterServer assembles the full production stack, middleware chain
// included, exactly as cmd/server wires it.
func newRouterServer(t *testing.T) (*httptest.Server, *routerStore) {
	t.Helper()
	st := newRouterStore()
	logger := zerolog.Nop()
	registry := chat.NewRegistry()
	broadcaster := chat.NewBroadcaster(registry, logger)
	msgRouter := chat.NewRouter(st, st, registry, logger)
	aggregator := chat.NewAggregator(st, st, registry, logger)
	gateway := ws.NewGateway(broadcaster, routerSecret, "", logger)
	h := handlers.NewHandler(msgRouter, aggregator, st, nil)

	mux := NewRouter(Config{
		Logger:    logger,
		Handler:   h,
		Gateway:   gateway,
		JWTSecret: routerSecret,
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, st
}

func routerToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.IssueToken(routerSecret, userID, time.Hour)
	require.NoError(t, err)
	return token
}

func dialRouter(t *testing.T, srv *httptest.Server, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + routerToken(t, userID)
	sock, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err, "websocket dial through assembled router")
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { sock.Close() })
	return sock
}

func readEvent(t *testing.T, sock *websocket.Conn, name string) json.RawMessage {
	t.Helper()
	require.NoError(t, sock.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		require.NoError(t, sock.ReadJSON(&frame), "waiting for %q", name)
		if frame.Event == name {
			return frame.Data
		}
	}
}

// The upgrade must survive the whole middleware chain (metrics, security
// headers, body cap, request validation, logging, rate limiting, CORS).
func TestRouterWebsocketUpgrade(t *testing.T) {
	srv, st := newRouterServer(t)
	alice := st.addUser("alice")

	sock := dialRouter(t, srv, alice)

	data := readEvent(t, sock, chat.EventOnlineUsers)
	var payload struct {
		UserIDs []uuid.UUID `json:"userIds"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Equal(t, []uuid.UUID{alice}, payload.UserIDs)
}

func TestRouterWebsocketRejectsBadToken(t *testing.T) {
	srv, _ := newRouterServer(t)

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=bogus"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// REST send through the full chain lands on a live websocket session.
func TestRouterMessageDeliveryEndToEnd(t *testing.T) {
	srv, st := newRouterServer(t)
	alice := st.addUser("alice")
	bob := st.addUser("bob")

	bobSock := dialRouter(t, srv, bob)
	readEvent(t, bobSock, chat.EventOnlineUsers)

	body := fmt.Sprintf(`{"receiverId":%q,"content":"hi bob"}`, bob)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/chat/messages", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+routerToken(t, alice))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := readEvent(t, bobSock, chat.EventReceiveMessage)
	var msg models.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, alice, msg.SenderID)
	require.Equal(t, bob, msg.ReceiverID)
	require.Equal(t, "hi bob", msg.Content)
}

func TestRouterRequiresAuthOnChatRoutes(t *testing.T) {
	srv, _ := newRouterServer(t)

	resp, err := http.Get(srv.URL + "/chat/conversations")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
