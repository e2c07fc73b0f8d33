package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ByteEmpire/roompartner/internal/auth"
	"github.com/ByteEmpire/roompartner/internal/chat"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 4096
	sendBufferSize = 32
)

// Inbound client events.
const (
	eventTyping            = "typing"
	eventGetOnlineStatus   = "getOnlineStatus"
	eventGetAllOnlineUsers = "getAllOnlineUsers"
)

// inboundFrame is a client-to-server event envelope.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type typingRequest struct {
	ReceiverID uuid.UUID `json:"receiverId"`
	IsTyping   bool      `json:"isTyping"`
}

type onlineStatusRequest struct {
	UserID uuid.UUID `json:"userId"`
}

// Gateway upgrades authenticated HTTP requests to websocket connections
// and bridges them into the presence subsystem. Identity is verified
// before any registry mutation; a bad token is rejected with 401 and the
// connection never registers.
type Gateway struct {
	broadcaster *chat.Broadcaster
	secret      []byte
	logger      zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewGateway creates a websocket gateway. allowedOrigin restricts the
// browser origin permitted to connect; empty allows any.
func NewGateway(broadcaster *chat.Broadcaster, secret []byte, allowedOrigin string, logger zerolog.Logger) *Gateway {
	return &Gateway{
		broadcaster: broadcaster,
		secret:      secret,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// ServeHTTP handles the websocket handshake.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := g.authenticate(r)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "authentication failed"})
		return
	}

	sock, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newConn(sock)
	go c.writer()

	g.broadcaster.Connect(userID, c)
	g.readLoop(userID, c)
}

// authenticate extracts and verifies the JWT from the handshake. Browsers
// cannot set headers on websocket requests, so the token is accepted from
// the query string as well as the Authorization header.
func (g *Gateway) authenticate(r *http.Request) (uuid.UUID, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		header := r.Header.Get("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		return uuid.Nil, auth.ErrInvalidToken
	}
	return auth.VerifyToken(g.secret, token)
}

// readLoop consumes client frames until the connection drops, then
// deregisters. Disconnection is the only cancellation signal.
func (g *Gateway) readLoop(userID uuid.UUID, c *conn) {
	defer func() {
		g.broadcaster.Disconnect(userID, c)
		c.close()
	}()

	c.ws.SetReadLimit(maxFrameSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame inboundFrame
		if err := c.ws.ReadJSON(&frame); err != nil {
			return
		}
		g.dispatch(userID, c, frame)
	}
}

// dispatch routes one inbound frame. Malformed payloads are dropped; the
// transport offers no acknowledgement for these fire-and-forget events.
func (g *Gateway) dispatch(userID uuid.UUID, c *conn, frame inboundFrame) {
	switch frame.Event {
	case eventTyping:
		var req typingRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.ReceiverID == uuid.Nil {
			return
		}
		g.broadcaster.RelayTyping(userID, req.ReceiverID, req.IsTyping)

	case eventGetOnlineStatus:
		var req onlineStatusRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.UserID == uuid.Nil {
			return
		}
		g.broadcaster.SendOnlineStatus(c, req.UserID)

	case eventGetAllOnlineUsers:
		g.broadcaster.SendSnapshot(c)

	default:
		g.logger.Debug().Str("event", frame.Event).Msg("unknown websocket event")
	}
}
