package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/threadcutter/threadcutter-api/internal/constants"
	"github.com/threadcutter/threadcutter-api/internal/models"
	"github.com/threadcutter/threadcutter-api/internal/service"
)

// FormatHandler handles thread generation endpoints.
type FormatHandler struct {
	formatter *service.FormatterService
	ledger    *service.LedgerService
	chats     *service.ChatService
	logger    *slog.Logger
}

// NewFormatHandler creates a new format handler.
func NewFormatHandler(formatter *service.FormatterService, ledger *service.LedgerService, chats *service.ChatService, logger *slog.Logger) *FormatHandler {
	return &FormatHandler{
		formatter: formatter,
		ledger:    ledger,
		chats:     chats,
		logger:    logger.With("component", "format_handler"),
	}
}

// UsageBody is the quota summary returned alongside results.
type UsageBody struct {
	Tier      string `json:"tier" doc:"Access tier the quota was computed for"`
	Limit     int    `json:"limit" doc:"Daily thread limit (-1 = unlimited)"`
	Used      int    `json:"used" doc:"Threads generated today"`
	Remaining int    `json:"remaining" doc:"Threads left today (0 when unlimited)"`
	Unlimited bool   `json:"unlimited"`
	Date      string `json:"date" doc:"UTC day the counts apply to"`
}

func usageBody(status *service.UsageStatus) UsageBody {
	return UsageBody{
		Tier:      status.Tier,
		Limit:     status.Limit,
		Used:      status.Record.Count,
		Remaining: status.Remaining,
		Unlimited: status.Unlimited,
		Date:      status.Record.Date,
	}
}

// FormatInput represents a thread generation request.
type FormatInput struct {
	Body struct {
		Text      string   `json:"text" minLength:"1" maxLength:"50000" doc:"Long-form text to split into a thread"`
		Platform  string   `json:"platform,omitempty" doc:"Target platform (twitter, threads, linkedin, instagram, facebook, tiktok)"`
		Tones     []string `json:"tones,omitempty" doc:"Tone presets to apply"`
		UseEmojis bool     `json:"use_emojis,omitempty"`
		MaxPosts  int      `json:"max_posts,omitempty" minimum:"0" maximum:"25" doc:"Cap on thread length (default 10)"`
		ChatID    string   `json:"chat_id,omitempty" doc:"Chat to record the exchange in (signed-in users only)"`
	}
}

// FormatOutput represents a generated thread.
type FormatOutput struct {
	Body struct {
		Posts           []models.Post `json:"posts"`
		Success         bool          `json:"success"`
		Error           string        `json:"error,omitempty"`
		TotalCharacters int           `json:"total_characters"`
		Fallback        bool          `json:"fallback" doc:"True when the local splitter produced the thread"`
		Usage           UsageBody     `json:"usage"`
		ChatMessageID   string        `json:"chat_message_id,omitempty" doc:"ID of the stored thread message when chat_id was given"`
	}
}

// Format generates a thread from long-form text, charging one unit of the
// identity's daily quota.
func (h *FormatHandler) Format(ctx context.Context, input *FormatInput) (*FormatOutput, error) {
	ident := getIdentity(ctx)

	status := h.ledger.GetUsage(ctx, ident)
	if !status.Allowed() {
		return nil, huma.Error429TooManyRequests(constants.QuotaExceededMessage(status.Tier))
	}

	features := constants.GetTierLimits(status.Tier)
	if len(input.Body.Tones) > 1 && !features.MultiTone {
		return nil, huma.Error403Forbidden(constants.FeatureNotAvailableMessage("multi_tone"))
	}
	if input.Body.UseEmojis && !features.EmojiToggle {
		return nil, huma.Error403Forbidden(constants.FeatureNotAvailableMessage("emoji_toggle"))
	}

	req := &models.FormatRequest{
		Text:      input.Body.Text,
		Platform:  input.Body.Platform,
		Tones:     input.Body.Tones,
		UseEmojis: input.Body.UseEmojis,
		MaxPosts:  input.Body.MaxPosts,
	}
	result, err := h.formatter.Format(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyText) {
			return nil, huma.Error400BadRequest("text must not be empty")
		}
		h.logger.Error("format failed", "error", err)
		return nil, huma.Error500InternalServerError("failed to generate thread")
	}

	if result.Success {
		status = h.ledger.IncrementUsage(ctx, ident)
	}

	out := &FormatOutput{}
	out.Body.Posts = result.Posts
	out.Body.Success = result.Success
	out.Body.Error = result.Error
	out.Body.TotalCharacters = result.TotalCharacters
	out.Body.Fallback = result.Fallback
	out.Body.Usage = usageBody(status)

	if input.Body.ChatID != "" && result.Success {
		if userID := getUserID(ctx); userID != "" {
			msg, err := h.chats.AppendExchange(ctx, userID, input.Body.ChatID, input.Body.Text, result)
			if err != nil {
				// The thread was generated and charged; a history failure
				// should not destroy the result.
				h.logger.Warn("failed to record exchange", "chat_id", input.Body.ChatID, "error", err)
			} else {
				out.Body.ChatMessageID = msg.ID
			}
		}
	}

	return out, nil
}

// RewriteInput represents a single-post rewrite request.
type RewriteInput struct {
	Body struct {
		Content     string   `json:"content" minLength:"1" maxLength:"10000" doc:"Post content to rework"`
		Instruction string   `json:"instruction" minLength:"1" maxLength:"1000" doc:"Free-text instruction, e.g. 'make it shorter'"`
		Platform    string   `json:"platform,omitempty"`
		Tones       []string `json:"tones,omitempty"`
		UseEmojis   bool     `json:"use_emojis,omitempty"`
	}
}

// RewriteOutput represents a rewritten post.
type RewriteOutput struct {
	Body struct {
		Posts   []models.Post `json:"posts"`
		Success bool          `json:"success"`
		Error   string        `json:"error,omitempty"`
	}
}

// Rewrite reworks a single post under an instruction. Rewrites do not
// charge the daily thread quota.
func (h *FormatHandler) Rewrite(ctx context.Context, input *RewriteInput) (*RewriteOutput, error) {
	req := &models.RewriteRequest{
		Content:     input.Body.Content,
		Instruction: input.Body.Instruction,
		Platform:    input.Body.Platform,
		Tones:       input.Body.Tones,
		UseEmojis:   input.Body.UseEmojis,
	}
	result, err := h.formatter.Rewrite(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyText):
			return nil, huma.Error400BadRequest("content must not be empty")
		case errors.Is(err, service.ErrEmptyInstruction):
			return nil, huma.Error400BadRequest("instruction must not be empty")
		default:
			h.logger.Error("rewrite failed", "error", err)
			return nil, huma.Error500InternalServerError("failed to rewrite post")
		}
	}

	out := &RewriteOutput{}
	out.Body.Posts = result.Posts
	out.Body.Success = result.Success
	out.Body.Error = result.Error
	return out, nil
}
