package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/threadcutter/threadcutter-api/internal/models"
	"github.com/threadcutter/threadcutter-api/internal/repository"
)

var (
	// ErrChatNotFound indicates the chat does not exist.
	ErrChatNotFound = errors.New("chat not found")

	// ErrNotChatOwner indicates the chat belongs to a different user.
	ErrNotChatOwner = errors.New("chat does not belong to user")

	// ErrMessageNotFound indicates the message does not exist.
	ErrMessageNotFound = errors.New("message not found")
)

// titleMaxLen bounds auto-generated chat titles.
const titleMaxLen = 50

// ChatService manages chats and their messages.
type ChatService struct {
	chatRepo repository.ChatRepository
	msgRepo  repository.MessageRepository
	logger   *slog.Logger
}

// NewChatService creates a new chat service.
func NewChatService(chatRepo repository.ChatRepository, msgRepo repository.MessageRepository, logger *slog.Logger) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		msgRepo:  msgRepo,
		logger:   logger.With("component", "chats"),
	}
}

// CreateChat creates a chat with the given settings. An empty title is
// derived from the first text later.
func (s *ChatService) CreateChat(ctx context.Context, userID, title, platform string, tones []string, useEmojis bool) (*models.Chat, error) {
	if tones == nil {
		tones = []string{}
	}
	now := time.Now().UTC()
	chat := &models.Chat{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Platform:  platform,
		Tones:     tones,
		UseEmojis: useEmojis,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if chat.Title == "" {
		chat.Title = "New chat"
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return chat, nil
}

// GetChat returns a chat with its messages, verifying ownership.
func (s *ChatService) GetChat(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	chat, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.msgRepo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	chat.Messages = make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		chat.Messages = append(chat.Messages, *m)
	}
	return chat, nil
}

// ListChats returns the user's chats, most recently updated first.
func (s *ChatService) ListChats(ctx context.Context, userID string, limit, offset int) ([]*models.Chat, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.chatRepo.GetByUserID(ctx, userID, limit, offset)
}

// UpdateChat updates a chat's title and formatting settings.
func (s *ChatService) UpdateChat(ctx context.Context, userID, chatID, title, platform string, tones []string, useEmojis bool) (*models.Chat, error) {
	chat, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if title != "" {
		chat.Title = title
	}
	if platform != "" {
		chat.Platform = platform
	}
	if tones != nil {
		chat.Tones = tones
	}
	chat.UseEmojis = useEmojis
	chat.UpdatedAt = time.Now().UTC()

	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to update chat: %w", err)
	}
	return chat, nil
}

// DeleteChat removes a chat and its messages.
func (s *ChatService) DeleteChat(ctx context.Context, userID, chatID string) error {
	if _, err := s.ownedChat(ctx, userID, chatID); err != nil {
		return err
	}
	if err := s.chatRepo.Delete(ctx, chatID); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}

// AppendExchange records a user message and the resulting thread as an ai
// message, and refreshes the chat's updated_at. Chats titled from their
// first exchange take the leading words of the text.
func (s *ChatService) AppendExchange(ctx context.Context, userID, chatID, text string, result *models.FormatResult) (*models.Message, error) {
	chat, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	userMsg := &models.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Type:      models.MessageTypeUser,
		Content:   text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.msgRepo.Create(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	aiMsg := &models.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Type:      models.MessageTypeAI,
		Content:   "",
		Posts:     result.Posts,
		CreatedAt: now.Add(time.Millisecond),
		UpdatedAt: now.Add(time.Millisecond),
	}
	if err := s.msgRepo.Create(ctx, aiMsg); err != nil {
		return nil, fmt.Errorf("failed to store generated message: %w", err)
	}

	if chat.Title == "" || chat.Title == "New chat" {
		chat.Title = deriveTitle(text)
	}
	chat.UpdatedAt = now
	if err := s.chatRepo.Update(ctx, chat); err != nil {
		s.logger.Warn("failed to refresh chat after exchange", "chat_id", chatID, "error", err)
	}

	return aiMsg, nil
}

// UpdateMessagePosts replaces the posts on an ai message, used after a
// post edit or rewrite. Character counts are recomputed server-side.
func (s *ChatService) UpdateMessagePosts(ctx context.Context, userID, chatID, messageID string, posts []models.Post) (*models.Message, error) {
	if _, err := s.ownedChat(ctx, userID, chatID); err != nil {
		return nil, err
	}

	msg, err := s.msgRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	if msg == nil || msg.ChatID != chatID {
		return nil, ErrMessageNotFound
	}

	for i := range posts {
		posts[i].CharacterCount = utf8.RuneCountInString(posts[i].Content)
		posts[i].Order = i + 1
		posts[i].TotalInBatch = len(posts)
	}
	msg.Posts = posts
	msg.UpdatedAt = time.Now().UTC()

	if err := s.msgRepo.Update(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}
	return msg, nil
}

func (s *ChatService) ownedChat(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	if chat.UserID != userID {
		return nil, ErrNotChatOwner
	}
	return chat, nil
}

// deriveTitle takes the first words of text, capped to titleMaxLen runes.
func deriveTitle(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "New chat"
	}
	if utf8.RuneCountInString(text) <= titleMaxLen {
		return text
	}
	return strings.TrimSpace(truncate(text, titleMaxLen-3)) + "..."
}
