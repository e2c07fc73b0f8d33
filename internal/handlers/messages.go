package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ByteEmpire/roompartner/internal/api/middleware"
	"github.com/ByteEmpire/roompartner/internal/chat"
	"github.com/ByteEmpire/roompartner/internal/models"
)

// SendMessageRequest represents the send message request body.
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// SendMessage handles POST /chat/messages. The sender is the
// authenticated caller; persistence is authoritative and live delivery is
// best-effort, so a 201 means the message is durable even if neither
// party was connected.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid receiver ID format")
		return
	}

	msg, err := h.router.Send(r.Context(), senderID, receiverID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrReceiverNotFound):
			h.Error(w, http.StatusNotFound, "receiver not found")
		case errors.Is(err, chat.ErrEmptyContent):
			h.Error(w, http.StatusBadRequest, "content is required")
		default:
			h.Error(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}

	h.JSON(w, http.StatusCreated, msg)
}

// GetMessages handles GET /chat/messages/{userId}: the full history
// between the caller and the given counterpart, oldest first. Loading a
// conversation marks the counterpart's messages to the caller as read
// (read-on-view).
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	counterpartID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user ID format")
		return
	}

	messages, err := h.router.History(r.Context(), viewerID, counterpartID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	h.JSON(w, http.StatusOK, messages)
}

// MarkAsRead handles PUT /chat/messages/read/{senderId}: marks all unread
// messages from that sender to the caller as read. Idempotent.
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	senderID, err := uuid.Parse(chi.URLParam(r, "senderId"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid sender ID format")
		return
	}

	if err := h.router.MarkRead(r.Context(), viewerID, senderID); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to mark messages as read")
		return
	}

	h.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
