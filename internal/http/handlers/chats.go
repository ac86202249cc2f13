package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/threadcutter/threadcutter-api/internal/models"
	"github.com/threadcutter/threadcutter-api/internal/service"
)

// ChatHandler handles chat history endpoints. All operations require a
// signed-in user; anonymous identities keep no history.
type ChatHandler struct {
	chats *service.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chats *service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// ListChatsInput represents a chat listing request.
type ListChatsInput struct {
	Limit  int `query:"limit" default:"50" minimum:"1" maximum:"100" doc:"Page size"`
	Offset int `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

// ListChatsOutput represents the chat listing response.
type ListChatsOutput struct {
	Body struct {
		Chats []*models.Chat `json:"chats"`
	}
}

// ListChats returns the user's chats, most recently updated first.
func (h *ChatHandler) ListChats(ctx context.Context, input *ListChatsInput) (*ListChatsOutput, error) {
	chats, err := h.chats.ListChats(ctx, getUserID(ctx), input.Limit, input.Offset)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list chats")
	}
	if chats == nil {
		chats = []*models.Chat{}
	}
	out := &ListChatsOutput{}
	out.Body.Chats = chats
	return out, nil
}

// GetChatInput represents a single chat request.
type GetChatInput struct {
	ID string `path:"id" doc:"Chat ID"`
}

// ChatOutput wraps a single chat response.
type ChatOutput struct {
	Body *models.Chat
}

// GetChat returns a chat with its messages.
func (h *ChatHandler) GetChat(ctx context.Context, input *GetChatInput) (*ChatOutput, error) {
	chat, err := h.chats.GetChat(ctx, getUserID(ctx), input.ID)
	if err != nil {
		return nil, mapChatError(err)
	}
	return &ChatOutput{Body: chat}, nil
}

// CreateChatInput represents a chat creation request.
type CreateChatInput struct {
	Body struct {
		Title     string   `json:"title,omitempty" maxLength:"200"`
		Platform  string   `json:"platform,omitempty"`
		Tones     []string `json:"tones,omitempty"`
		UseEmojis bool     `json:"use_emojis,omitempty"`
	}
}

// CreateChat creates a new chat.
func (h *ChatHandler) CreateChat(ctx context.Context, input *CreateChatInput) (*ChatOutput, error) {
	chat, err := h.chats.CreateChat(ctx, getUserID(ctx), input.Body.Title, input.Body.Platform, input.Body.Tones, input.Body.UseEmojis)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to create chat")
	}
	return &ChatOutput{Body: chat}, nil
}

// UpdateChatInput represents a chat settings update.
type UpdateChatInput struct {
	ID   string `path:"id" doc:"Chat ID"`
	Body struct {
		Title     string   `json:"title,omitempty" maxLength:"200"`
		Platform  string   `json:"platform,omitempty"`
		Tones     []string `json:"tones,omitempty"`
		UseEmojis bool     `json:"use_emojis,omitempty"`
	}
}

// UpdateChat updates a chat's title and formatting settings.
func (h *ChatHandler) UpdateChat(ctx context.Context, input *UpdateChatInput) (*ChatOutput, error) {
	chat, err := h.chats.UpdateChat(ctx, getUserID(ctx), input.ID, input.Body.Title, input.Body.Platform, input.Body.Tones, input.Body.UseEmojis)
	if err != nil {
		return nil, mapChatError(err)
	}
	return &ChatOutput{Body: chat}, nil
}

// DeleteChatInput represents a chat deletion request.
type DeleteChatInput struct {
	ID string `path:"id" doc:"Chat ID"`
}

// DeleteChatOutput represents the deletion response.
type DeleteChatOutput struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

// DeleteChat removes a chat and its messages.
func (h *ChatHandler) DeleteChat(ctx context.Context, input *DeleteChatInput) (*DeleteChatOutput, error) {
	if err := h.chats.DeleteChat(ctx, getUserID(ctx), input.ID); err != nil {
		return nil, mapChatError(err)
	}
	out := &DeleteChatOutput{}
	out.Body.Deleted = true
	return out, nil
}

// UpdateMessagePostsInput represents an edit to a stored thread.
type UpdateMessagePostsInput struct {
	ChatID    string `path:"id" doc:"Chat ID"`
	MessageID string `path:"messageId" doc:"Message ID"`
	Body      struct {
		Posts []models.Post `json:"posts" doc:"Replacement posts; counts and ordering are recomputed"`
	}
}

// MessageOutput wraps a single message response.
type MessageOutput struct {
	Body *models.Message
}

// UpdateMessagePosts replaces the posts on a generated message after the
// user edits or rewrites one.
func (h *ChatHandler) UpdateMessagePosts(ctx context.Context, input *UpdateMessagePostsInput) (*MessageOutput, error) {
	msg, err := h.chats.UpdateMessagePosts(ctx, getUserID(ctx), input.ChatID, input.MessageID, input.Body.Posts)
	if err != nil {
		return nil, mapChatError(err)
	}
	return &MessageOutput{Body: msg}, nil
}
