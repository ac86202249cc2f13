package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/threadcutter/threadcutter-api/internal/models"
)

// ========================================
// Chat Repository
// ========================================

// SQLiteChatRepository implements ChatRepository for SQLite.
type SQLiteChatRepository struct {
	db *sql.DB
}

// NewSQLiteChatRepository creates a new SQLite chat repository.
func NewSQLiteChatRepository(db *sql.DB) *SQLiteChatRepository {
	return &SQLiteChatRepository{db: db}
}

func (r *SQLiteChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	tones, err := json.Marshal(chat.Tones)
	if err != nil {
		return fmt.Errorf("failed to marshal tones: %w", err)
	}
	query := `INSERT INTO chats (id, user_id, title, platform, tones_json, use_emojis, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		chat.ID, chat.UserID, chat.Title, chat.Platform, string(tones), boolToInt(chat.UseEmojis),
		chat.CreatedAt.Format(time.RFC3339), chat.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteChatRepository) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	query := `SELECT id, user_id, title, platform, tones_json, use_emojis, created_at, updated_at
		FROM chats WHERE id = ?`
	return scanChat(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteChatRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Chat, error) {
	query := `SELECT id, user_id, title, platform, tones_json, use_emojis, created_at, updated_at
		FROM chats WHERE user_id = ? ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		chat, err := scanChatRow(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (r *SQLiteChatRepository) Update(ctx context.Context, chat *models.Chat) error {
	tones, err := json.Marshal(chat.Tones)
	if err != nil {
		return fmt.Errorf("failed to marshal tones: %w", err)
	}
	query := `UPDATE chats SET title = ?, platform = ?, tones_json = ?, use_emojis = ?, updated_at = ?
		WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query,
		chat.Title, chat.Platform, string(tones), boolToInt(chat.UseEmojis),
		chat.UpdatedAt.Format(time.RFC3339), chat.ID)
	return err
}

func (r *SQLiteChatRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id)
	return err
}

func (r *SQLiteChatRepository) DeleteOlderThan(ctx context.Context, before time.Time) ([]string, error) {
	cutoff := before.Format(time.RFC3339)
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM chats WHERE updated_at < ?`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE updated_at < ?`, cutoff); err != nil {
		return nil, err
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row *sql.Row) (*models.Chat, error) {
	chat, err := scanChatRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return chat, err
}

func scanChatRow(row rowScanner) (*models.Chat, error) {
	var chat models.Chat
	var tonesJSON string
	var useEmojis int
	var createdAt, updatedAt string
	if err := row.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.Platform, &tonesJSON, &useEmojis, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tonesJSON), &chat.Tones); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tones: %w", err)
	}
	chat.UseEmojis = useEmojis != 0
	chat.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	chat.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &chat, nil
}

// ========================================
// Message Repository
// ========================================

// SQLiteMessageRepository implements MessageRepository for SQLite.
type SQLiteMessageRepository struct {
	db *sql.DB
}

// NewSQLiteMessageRepository creates a new SQLite message repository.
func NewSQLiteMessageRepository(db *sql.DB) *SQLiteMessageRepository {
	return &SQLiteMessageRepository{db: db}
}

func (r *SQLiteMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	postsJSON, err := marshalPosts(msg.Posts)
	if err != nil {
		return err
	}
	query := `INSERT INTO chat_messages (id, chat_id, type, content, posts_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		msg.ID, msg.ChatID, string(msg.Type), msg.Content, postsJSON,
		msg.CreatedAt.Format(time.RFC3339), msg.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteMessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `SELECT id, chat_id, type, content, posts_json, created_at, updated_at
		FROM chat_messages WHERE id = ?`
	msg, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return msg, err
}

func (r *SQLiteMessageRepository) GetByChatID(ctx context.Context, chatID string) ([]*models.Message, error) {
	query := `SELECT id, chat_id, type, content, posts_json, created_at, updated_at
		FROM chat_messages WHERE chat_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *SQLiteMessageRepository) Update(ctx context.Context, msg *models.Message) error {
	postsJSON, err := marshalPosts(msg.Posts)
	if err != nil {
		return err
	}
	query := `UPDATE chat_messages SET content = ?, posts_json = ?, updated_at = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query, msg.Content, postsJSON, msg.UpdatedAt.Format(time.RFC3339), msg.ID)
	return err
}

func (r *SQLiteMessageRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE id = ?`, id)
	return err
}

func marshalPosts(posts []models.Post) (*string, error) {
	if len(posts) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(posts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal posts: %w", err)
	}
	s := string(b)
	return &s, nil
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var msg models.Message
	var msgType string
	var postsJSON sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&msg.ID, &msg.ChatID, &msgType, &msg.Content, &postsJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	msg.Type = models.MessageType(msgType)
	if postsJSON.Valid && postsJSON.String != "" {
		if err := json.Unmarshal([]byte(postsJSON.String), &msg.Posts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal posts: %w", err)
		}
	}
	msg.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	msg.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &msg, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
