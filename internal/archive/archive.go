// Package archive is the durable persistence variant of the chat contract:
// the same entities as the in-memory core, modeled with explicit foreign-key
// relationships (users, chat_rooms, messages, login_attempts). The core never
// reads from it; writes are best-effort mirrors plus the login audit trail.
package archive

import (
	"context"
	"time"

	"github.com/parlor-chat/parlor/internal/models"
)

// LoginAttempt is one audit-trail row, successful or not.
type LoginAttempt struct {
	Username    string
	Email       string
	IPAddress   string
	UserAgent   string
	Success     bool
	AttemptedAt time.Time
}

// Archive defines the durable store. PostgresArchive and SQLiteArchive both
// implement it.
type Archive interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Users. SaveUser upserts by username; RenameUser moves the unique
	// username, which cascades to messages through the foreign keys rather
	// than by rewriting rows.
	SaveUser(ctx context.Context, u *models.User, passwordHash string) error
	RenameUser(ctx context.Context, oldUsername, newUsername string) error

	// Rooms and messages
	SaveRoom(ctx context.Context, room *models.Room) error
	SaveMessage(ctx context.Context, roomSlug string, m *models.Message) error
	UpdateMessage(ctx context.Context, m *models.Message) error
	DeleteMessage(ctx context.Context, messageID string) error
	SavePrivateMessage(ctx context.Context, pm *models.PrivateMessage) error

	// Audit trail
	RecordLoginAttempt(ctx context.Context, attempt LoginAttempt) error
}
