package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/ByteEmpire/roompartner/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the development
// fallback used when no DATABASE_URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/roompartner.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/roompartner.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		full_name TEXT DEFAULT '',
		profile_image TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		sender_id TEXT NOT NULL,
		receiver_id TEXT NOT NULL,
		content TEXT NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id);
	CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(receiver_id, is_read);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateMessage persists a new message with a monotonic ULID.
func (s *SQLiteStore) CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	msg := &models.Message{
		ID:         ulid.Make().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UnixMilli(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, content, is_read, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, msg.ID, msg.SenderID.String(), msg.ReceiverID.String(), msg.Content, msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MessagesBetween retrieves the full history between two users, oldest first.
func (s *SQLiteStore) MessagesBetween(ctx context.Context, userID, counterpartID uuid.UUID) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, content, is_read, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY id ASC
	`, userID.String(), counterpartID.String(), counterpartID.String(), userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

// LatestMessageBetween retrieves the most recent message between two users.
func (s *SQLiteStore) LatestMessageBetween(ctx context.Context, userID, counterpartID uuid.UUID) (*models.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, content, is_read, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY id DESC
		LIMIT 1
	`, userID.String(), counterpartID.String(), counterpartID.String(), userID.String())

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// CountUnread counts unread messages from counterpart to viewer.
func (s *SQLiteStore) CountUnread(ctx context.Context, viewerID, counterpartID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE sender_id = ? AND receiver_id = ? AND is_read = 0
	`, counterpartID.String(), viewerID.String()).Scan(&count)
	return count, err
}

// MarkRead marks all unread messages from counterpart to viewer as read.
func (s *SQLiteStore) MarkRead(ctx context.Context, viewerID, counterpartID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1
		WHERE sender_id = ? AND receiver_id = ? AND is_read = 0
	`, counterpartID.String(), viewerID.String())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CounterpartIDs returns the distinct users the given user has exchanged
// messages with, in either direction.
func (s *SQLiteStore) CounterpartIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT receiver_id FROM messages WHERE sender_id = ?
		UNION
		SELECT sender_id FROM messages WHERE receiver_id = ?
	`, userID.String(), userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetUserByID retrieves a user's minimal profile fields.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, profile_image, created_at
		FROM users WHERE id = ?
	`, id.String()).Scan(&idStr, &user.Email, &user.FullName, &user.ProfileImage, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.ID = uuid.MustParse(idStr)
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*models.Message, error) {
	msg := &models.Message{}
	var senderStr, receiverStr string
	var isRead int
	if err := row.Scan(&msg.ID, &senderStr, &receiverStr, &msg.Content, &isRead, &msg.CreatedAt); err != nil {
		return nil, err
	}
	sender, err := uuid.Parse(senderStr)
	if err != nil {
		return nil, err
	}
	receiver, err := uuid.Parse(receiverStr)
	if err != nil {
		return nil, err
	}
	msg.SenderID = sender
	msg.ReceiverID = receiver
	msg.IsRead = isRead != 0
	return msg, nil
}
