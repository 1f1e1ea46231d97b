package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parlor-chat/parlor/internal/api/middleware"
	"github.com/parlor-chat/parlor/internal/metrics"
)

// RoomListResponse represents the room list response.
type RoomListResponse struct {
	Rooms []roomSummaryJSON `json:"rooms"`
}

type roomSummaryJSON struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MessageCount int    `json:"message_count"`
}

// ListRooms returns all rooms in creation order.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	summaries := h.store.Rooms()
	rooms := make([]roomSummaryJSON, len(summaries))
	for i, s := range summaries {
		rooms[i] = roomSummaryJSON{ID: s.Slug, Name: s.Name, MessageCount: s.MessageCount}
	}
	h.JSON(w, http.StatusOK, RoomListResponse{Rooms: rooms})
}

// RoomMessagesResponse represents the room message window response.
type RoomMessagesResponse struct {
	Messages []messageJSON `json:"messages"`
	RoomName string        `json:"room_name"`
}

// GetRoomMessages returns the most recent messages of a room, oldest first.
func (h *Handler) GetRoomMessages(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "room")

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > 200 {
		limit = 200
	}

	msgs, roomName, err := h.store.Messages(slug, limit)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	out := make([]messageJSON, len(msgs))
	for i, m := range msgs {
		out[i] = toMessageJSON(m)
	}
	h.JSON(w, http.StatusOK, RoomMessagesResponse{Messages: out, RoomName: roomName})
}

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	RoomName string `json:"room_name"`
}

// CreateRoom creates a room with a slug derived from its name.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	room, err := h.store.CreateRoom(req.RoomName, user.Username)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	h.mirror("save_room", func(ctx context.Context) error {
		return h.arc.SaveRoom(ctx, room)
	})
	metrics.RoomsCreated.Inc()

	h.JSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"room_id":   room.Slug,
		"room_name": room.Name,
	})
}
