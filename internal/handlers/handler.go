package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ByteEmpire/roompartner/internal/chat"
	"github.com/ByteEmpire/roompartner/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	router     *chat.Router
	aggregator *chat.Aggregator
	db         store.DataStore
	redis      *store.RedisStore
}

// NewHandler creates a new Handler with the given collaborators.
func NewHandler(router *chat.Router, aggregator *chat.Aggregator, db store.DataStore, redis *store.RedisStore) *Handler {
	return &Handler{router: router, aggregator: aggregator, db: db, redis: redis}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
