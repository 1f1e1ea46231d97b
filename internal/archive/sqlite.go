package archive

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parlor-chat/parlor/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	telegram_username TEXT NOT NULL DEFAULT '',
	active INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_seen TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS chat_rooms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	slug TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	created_by INTEGER REFERENCES users(id),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT UNIQUE NOT NULL,
	content TEXT NOT NULL,
	user_id INTEGER NOT NULL REFERENCES users(id),
	room_id INTEGER REFERENCES chat_rooms(id),
	recipient_id INTEGER REFERENCES users(id),
	is_private INTEGER NOT NULL DEFAULT 0,
	is_edited INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	edited_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS login_attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	ip_address TEXT NOT NULL,
	user_agent TEXT,
	success INTEGER NOT NULL DEFAULT 0,
	attempted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteArchive is the single-file implementation of the durable store, for
// deployments without a PostgreSQL instance.
type SQLiteArchive struct {
	db *sql.DB
}

// NewSQLiteArchive opens (creating if needed) the database at dbPath.
func NewSQLiteArchive(ctx context.Context, dbPath string) (*SQLiteArchive, error) {
	if dbPath == "" {
		dbPath = "./data/parlor.db"
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteArchive{db: db}, nil
}

// Close closes the database.
func (a *SQLiteArchive) Close() {
	a.db.Close()
}

// Ping checks the database connection.
func (a *SQLiteArchive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// SaveUser upserts a user record by username.
func (a *SQLiteArchive) SaveUser(ctx context.Context, u *models.User, passwordHash string) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, display_name, telegram_username, created_at, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			telegram_username = excluded.telegram_username,
			last_seen = excluded.last_seen,
			password_hash = CASE WHEN excluded.password_hash <> '' THEN excluded.password_hash ELSE users.password_hash END
	`, u.Username, u.Email, passwordHash, u.DisplayName, u.TelegramUsername, u.CreatedAt, u.LastSeen)
	return err
}

// RenameUser moves the unique username; message rows follow via user_id.
func (a *SQLiteArchive) RenameUser(ctx context.Context, oldUsername, newUsername string) error {
	_, err := a.db.ExecContext(ctx, `
		UPDATE users SET username = ? WHERE username = ?
	`, newUsername, oldUsername)
	return err
}

// SaveRoom inserts a room if its slug is new.
func (a *SQLiteArchive) SaveRoom(ctx context.Context, room *models.Room) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO chat_rooms (slug, name, created_by, created_at)
		VALUES (?, ?, (SELECT id FROM users WHERE username = ?), ?)
		ON CONFLICT (slug) DO NOTHING
	`, room.Slug, room.Name, room.CreatedBy, room.CreatedAt)
	return err
}

// SaveMessage inserts a room message.
func (a *SQLiteArchive) SaveMessage(ctx context.Context, roomSlug string, m *models.Message) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO messages (uid, content, user_id, room_id, is_private, created_at)
		VALUES (?, ?,
			(SELECT id FROM users WHERE username = ?),
			(SELECT id FROM chat_rooms WHERE slug = ?),
			0, ?)
		ON CONFLICT (uid) DO NOTHING
	`, m.ID, m.Body, m.Author, roomSlug, m.CreatedAt)
	return err
}

// UpdateMessage mirrors an edit.
func (a *SQLiteArchive) UpdateMessage(ctx context.Context, m *models.Message) error {
	_, err := a.db.ExecContext(ctx, `
		UPDATE messages SET content = ?, is_edited = 1, edited_at = ? WHERE uid = ?
	`, m.Body, m.EditedAt, m.ID)
	return err
}

// DeleteMessage mirrors a delete.
func (a *SQLiteArchive) DeleteMessage(ctx context.Context, messageID string) error {
	_, err := a.db.ExecContext(ctx, `DELETE FROM messages WHERE uid = ?`, messageID)
	return err
}

// SavePrivateMessage inserts a direct message row (room_id stays NULL).
func (a *SQLiteArchive) SavePrivateMessage(ctx context.Context, pm *models.PrivateMessage) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO messages (uid, content, user_id, recipient_id, is_private, created_at)
		VALUES (?, ?,
			(SELECT id FROM users WHERE username = ?),
			(SELECT id FROM users WHERE username = ?),
			1, ?)
		ON CONFLICT (uid) DO NOTHING
	`, pm.ID, pm.Body, pm.From, pm.To, pm.CreatedAt)
	return err
}

// RecordLoginAttempt appends one audit row.
func (a *SQLiteArchive) RecordLoginAttempt(ctx context.Context, attempt LoginAttempt) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO login_attempts (username, email, ip_address, user_agent, success, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, attempt.Username, attempt.Email, attempt.IPAddress, attempt.UserAgent, attempt.Success, attempt.AttemptedAt)
	return err
}
