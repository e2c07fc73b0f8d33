package handlers

import (
	"net/http"

	"github.com/ByteEmpire/roompartner/internal/api/middleware"
	"github.com/ByteEmpire/roompartner/internal/models"
)

// GetConversations handles GET /chat/conversations: the caller's derived
// conversation list, most recently active first.
func (h *Handler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	conversations, err := h.aggregator.ListConversations(r.Context(), userID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load conversations")
		return
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}

	h.JSON(w, http.StatusOK, conversations)
}
