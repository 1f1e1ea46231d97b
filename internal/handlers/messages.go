package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/parlor-chat/parlor/internal/api/middleware"
	"github.com/parlor-chat/parlor/internal/metrics"
)

// SendMessageRequest represents the post message request.
type SendMessageRequest struct {
	RoomID  string `json:"room_id"`
	Message string `json:"message"`
}

// SendMessage posts a message to a room as the authenticated identity.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.RoomID == "" || strings.TrimSpace(req.Message) == "" {
		h.Error(w, http.StatusBadRequest, "Room ID and message are required")
		return
	}

	msg, err := h.store.Post(req.RoomID, user.Username, req.Message)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	h.mirror("save_message", func(ctx context.Context) error {
		return h.arc.SaveMessage(ctx, req.RoomID, msg)
	})
	metrics.MessagesPosted.WithLabelValues(req.RoomID).Inc()

	h.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": toMessageJSON(*msg),
	})
}

// EditMessageRequest represents the edit message request.
type EditMessageRequest struct {
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
	Message   string `json:"message"`
}

// EditMessage replaces the body of the caller's own message. A message
// belonging to someone else reports not-found, never forbidden.
func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.RoomID == "" || req.MessageID == "" || strings.TrimSpace(req.Message) == "" {
		h.Error(w, http.StatusBadRequest, "Message ID, new text, and room ID are required")
		return
	}

	msg, err := h.store.Edit(req.RoomID, req.MessageID, user.Username, req.Message)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	h.mirror("update_message", func(ctx context.Context) error {
		return h.arc.UpdateMessage(ctx, msg)
	})
	metrics.MessagesEdited.Inc()

	h.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": toMessageJSON(*msg),
	})
}

// DeleteMessageRequest represents the delete message request.
type DeleteMessageRequest struct {
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
}

// DeleteMessage removes the caller's own message from a room.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req DeleteMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.RoomID == "" || req.MessageID == "" {
		h.Error(w, http.StatusBadRequest, "Message ID and room ID are required")
		return
	}

	if err := h.store.Delete(req.RoomID, req.MessageID, user.Username); err != nil {
		h.StoreError(w, err)
		return
	}

	h.mirror("delete_message", func(ctx context.Context) error {
		return h.arc.DeleteMessage(ctx, req.MessageID)
	})
	metrics.MessagesDeleted.Inc()

	h.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
