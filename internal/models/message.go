package models

import "time"

// Message is a single room message.
type Message struct {
	ID        string     `json:"id"` // ULID, time-ordered
	Author    string     `json:"user_id"`
	Nickname  string     `json:"nickname"`
	Body      string     `json:"message"`
	CreatedAt time.Time  `json:"timestamp"`
	Edited    bool       `json:"edited"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}

// FormattedTime is the short clock rendering clients show beside a message.
func (m *Message) FormattedTime() string {
	return m.CreatedAt.Format("15:04")
}
