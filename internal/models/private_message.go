package models

import "time"

// PrivateMessage is a direct message between two identities. Private messages
// are immutable once sent.
type PrivateMessage struct {
	ID           string    `json:"id"` // ULID, time-ordered
	From         string    `json:"from_user_id"`
	FromNickname string    `json:"from_nickname"`
	To           string    `json:"to_user_id"`
	ToNickname   string    `json:"to_nickname"`
	Body         string    `json:"message"`
	CreatedAt    time.Time `json:"timestamp"`
	IsPrivate    bool      `json:"is_private"` // always true, kept for client compatibility
}

// FormattedTime is the short clock rendering clients show beside a message.
func (m *PrivateMessage) FormattedTime() string {
	return m.CreatedAt.Format("15:04")
}
