package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/ByteEmpire/roompartner/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool
// and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// initSchema creates tables if they don't exist. The users table is owned
// by the account service; it is created here only so a standalone instance
// can start against an empty database.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		full_name TEXT DEFAULT '',
		profile_image TEXT DEFAULT '',
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		sender_id UUID NOT NULL,
		receiver_id UUID NOT NULL,
		content TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id);
	CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(receiver_id, is_read);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateMessage persists a new message. The ID is a monotonic ULID, so IDs
// assigned by this process sort in insertion order.
func (s *PostgresStore) CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	msg := &models.Message{
		ID:         ulid.Make().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UnixMilli(),
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, content, is_read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`, msg.ID, msg.SenderID, msg.ReceiverID, msg.Content, msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MessagesBetween retrieves the full history between two users, oldest first.
func (s *PostgresStore) MessagesBetween(ctx context.Context, userID, counterpartID uuid.UUID) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, content, is_read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY id ASC
	`, userID, counterpartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.IsRead, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// LatestMessageBetween retrieves the most recent message between two users.
func (s *PostgresStore) LatestMessageBetween(ctx context.Context, userID, counterpartID uuid.UUID) (*models.Message, error) {
	msg := &models.Message{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, sender_id, receiver_id, content, is_read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY id DESC
		LIMIT 1
	`, userID, counterpartID).Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.IsRead, &msg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// CountUnread counts unread messages from counterpart to viewer.
func (s *PostgresStore) CountUnread(ctx context.Context, viewerID, counterpartID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE sender_id = $2 AND receiver_id = $1 AND is_read = FALSE
	`, viewerID, counterpartID).Scan(&count)
	return count, err
}

// MarkRead marks all unread messages from counterpart to viewer as read.
func (s *PostgresStore) MarkRead(ctx context.Context, viewerID, counterpartID uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE sender_id = $2 AND receiver_id = $1 AND is_read = FALSE
	`, viewerID, counterpartID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CounterpartIDs returns the distinct users the given user has exchanged
// messages with, in either direction.
func (s *PostgresStore) CounterpartIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT receiver_id FROM messages WHERE sender_id = $1
		UNION
		SELECT sender_id FROM messages WHERE receiver_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetUserByID retrieves a user's minimal profile fields.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, full_name, profile_image, created_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.FullName, &user.ProfileImage, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
