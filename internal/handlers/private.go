package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/parlor-chat/parlor/internal/api/middleware"
	"github.com/parlor-chat/parlor/internal/metrics"
)

// SendPrivateMessageRequest represents the send private message request.
type SendPrivateMessageRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// SendPrivateMessage sends a direct message to another identity.
func (h *Handler) SendPrivateMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req SendPrivateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pm, err := h.store.SendPrivate(user.Username, req.Recipient, req.Message)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	h.mirror("save_private_message", func(ctx context.Context) error {
		return h.arc.SavePrivateMessage(ctx, pm)
	})
	metrics.PrivateMessages.Inc()

	h.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": toPrivateMessageJSON(*pm),
	})
}

// PrivateMessagesResponse represents the private message list response.
type PrivateMessagesResponse struct {
	Messages []privateMessageJSON `json:"messages"`
}

// GetPrivateMessages returns the caller's private messages, oldest first.
func (h *Handler) GetPrivateMessages(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	pms := h.store.PrivateFor(user.Username, 50)
	out := make([]privateMessageJSON, len(pms))
	for i, pm := range pms {
		out[i] = toPrivateMessageJSON(pm)
	}
	h.JSON(w, http.StatusOK, PrivateMessagesResponse{Messages: out})
}
