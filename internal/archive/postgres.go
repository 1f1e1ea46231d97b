package archive

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parlor-chat/parlor/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	telegram_username TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS chat_rooms (
	id BIGSERIAL PRIMARY KEY,
	slug TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	created_by BIGINT REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS messages (
	id BIGSERIAL PRIMARY KEY,
	uid TEXT UNIQUE NOT NULL,
	content TEXT NOT NULL,
	user_id BIGINT NOT NULL REFERENCES users(id),
	room_id BIGINT REFERENCES chat_rooms(id),
	recipient_id BIGINT REFERENCES users(id),
	is_private BOOLEAN NOT NULL DEFAULT FALSE,
	is_edited BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	edited_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS login_attempts (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	ip_address TEXT NOT NULL,
	user_agent TEXT,
	success BOOLEAN NOT NULL DEFAULT FALSE,
	attempted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresArchive is the PostgreSQL implementation of the durable store.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

// NewPostgresArchive connects, pings, and creates the schema.
func NewPostgresArchive(ctx context.Context, databaseURL string) (*PostgresArchive, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresArchive{pool: pool}, nil
}

// Close closes the connection pool.
func (a *PostgresArchive) Close() {
	a.pool.Close()
}

// Ping checks the database connection.
func (a *PostgresArchive) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

// SaveUser upserts a user record by username.
func (a *PostgresArchive) SaveUser(ctx context.Context, u *models.User, passwordHash string) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO users (username, email, password_hash, display_name, telegram_username, created_at, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (username) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			telegram_username = EXCLUDED.telegram_username,
			last_seen = EXCLUDED.last_seen,
			password_hash = CASE WHEN EXCLUDED.password_hash <> '' THEN EXCLUDED.password_hash ELSE users.password_hash END
	`, u.Username, u.Email, passwordHash, u.DisplayName, u.TelegramUsername, u.CreatedAt, u.LastSeen)
	return err
}

// RenameUser moves the unique username. Messages reference users.id, so the
// rename needs no history rewrite here.
func (a *PostgresArchive) RenameUser(ctx context.Context, oldUsername, newUsername string) error {
	_, err := a.pool.Exec(ctx, `
		UPDATE users SET username = $2 WHERE username = $1
	`, oldUsername, newUsername)
	return err
}

// SaveRoom inserts a room if its slug is new.
func (a *PostgresArchive) SaveRoom(ctx context.Context, room *models.Room) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO chat_rooms (slug, name, created_by, created_at)
		VALUES ($1, $2, (SELECT id FROM users WHERE username = $3), $4)
		ON CONFLICT (slug) DO NOTHING
	`, room.Slug, room.Name, room.CreatedBy, room.CreatedAt)
	return err
}

// SaveMessage inserts a room message.
func (a *PostgresArchive) SaveMessage(ctx context.Context, roomSlug string, m *models.Message) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO messages (uid, content, user_id, room_id, is_private, created_at)
		VALUES ($1, $2,
			(SELECT id FROM users WHERE username = $3),
			(SELECT id FROM chat_rooms WHERE slug = $4),
			FALSE, $5)
		ON CONFLICT (uid) DO NOTHING
	`, m.ID, m.Body, m.Author, roomSlug, m.CreatedAt)
	return err
}

// UpdateMessage mirrors an edit.
func (a *PostgresArchive) UpdateMessage(ctx context.Context, m *models.Message) error {
	_, err := a.pool.Exec(ctx, `
		UPDATE messages SET content = $2, is_edited = TRUE, edited_at = $3 WHERE uid = $1
	`, m.ID, m.Body, m.EditedAt)
	return err
}

// DeleteMessage mirrors a delete.
func (a *PostgresArchive) DeleteMessage(ctx context.Context, messageID string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM messages WHERE uid = $1`, messageID)
	return err
}

// SavePrivateMessage inserts a direct message row (room_id stays NULL).
func (a *PostgresArchive) SavePrivateMessage(ctx context.Context, pm *models.PrivateMessage) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO messages (uid, content, user_id, recipient_id, is_private, created_at)
		VALUES ($1, $2,
			(SELECT id FROM users WHERE username = $3),
			(SELECT id FROM users WHERE username = $4),
			TRUE, $5)
		ON CONFLICT (uid) DO NOTHING
	`, pm.ID, pm.Body, pm.From, pm.To, pm.CreatedAt)
	return err
}

// RecordLoginAttempt appends one audit row.
func (a *PostgresArchive) RecordLoginAttempt(ctx context.Context, attempt LoginAttempt) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO login_attempts (username, email, ip_address, user_agent, success, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, attempt.Username, attempt.Email, attempt.IPAddress, attempt.UserAgent, attempt.Success, attempt.AttemptedAt)
	return err
}
