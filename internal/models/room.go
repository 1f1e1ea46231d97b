package models

import "time"

// Room describes a chat room. The message log itself is owned by the chat
// store; Room carries only the metadata exposed to clients.
type Room struct {
	Slug      string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomSummary is the shape returned by room listings.
type RoomSummary struct {
	Slug         string `json:"id"`
	Name         string `json:"name"`
	MessageCount int    `json:"message_count"`
}
