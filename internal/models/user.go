package models

import (
	"time"
)

// User is a chat identity. Username is the identity key: every message and
// private message references its author by this string, and a nickname change
// rewrites those references rather than re-pointing them.
type User struct {
	Username         string    `json:"username"`
	DisplayName      string    `json:"display_name,omitempty"`
	Email            string    `json:"email,omitempty"`
	Provider         string    `json:"provider,omitempty"`
	ProviderID       string    `json:"-"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	TelegramUsername string    `json:"telegram_username,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeen         time.Time `json:"last_seen"`
}

// Label is the chat-visible name shown next to messages.
func (u *User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
