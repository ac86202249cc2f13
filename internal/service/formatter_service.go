package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/threadcutter/threadcutter-api/internal/constants"
	"github.com/threadcutter/threadcutter-api/internal/models"
)

var (
	// ErrEmptyText indicates a format request with no content.
	ErrEmptyText = errors.New("text must not be empty")

	// ErrEmptyInstruction indicates a rewrite request with no instruction.
	ErrEmptyInstruction = errors.New("instruction must not be empty")

	// ErrRewriteFailed indicates the provider could not rewrite the post.
	ErrRewriteFailed = errors.New("rewrite failed")
)

// DefaultMaxPosts caps thread length when a request does not specify one.
const DefaultMaxPosts = 10

// Generator is the subset of the provider client the formatter needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Configured() bool
}

// FormatterService turns long-form text into platform-sized post threads.
// The provider path is best-effort: any provider failure degrades to the
// local sentence splitter rather than failing the request.
type FormatterService struct {
	generator Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// NewFormatterService creates a new formatter service.
func NewFormatterService(generator Generator, timeout time.Duration, logger *slog.Logger) *FormatterService {
	if timeout <= 0 {
		timeout = constants.FormatRequestTimeout
	}
	return &FormatterService{
		generator: generator,
		timeout:   timeout,
		logger:    logger.With("component", "formatter"),
	}
}

// Format produces a thread of posts for the request. The result is always
// successful for valid input; Fallback reports whether the local splitter
// produced it instead of the provider.
func (s *FormatterService) Format(ctx context.Context, req *models.FormatRequest) (*models.FormatResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	spec := s.platformSpec(req.Platform)
	maxPosts := req.MaxPosts
	if maxPosts <= 0 {
		maxPosts = DefaultMaxPosts
	}

	if s.generator != nil && s.generator.Configured() {
		posts, fromProvider := s.generate(ctx, req, spec, maxPosts)
		if fromProvider {
			return s.result(posts, false), nil
		}
	}

	posts := splitIntoPosts(req.Text, spec.CharLimit, maxPosts)
	return s.result(posts, true), nil
}

// generate runs the provider path. It returns (posts, true) when the
// provider produced usable output, even if that output needed local
// splitting, and (nil, false) when the provider call itself failed.
func (s *FormatterService) generate(ctx context.Context, req *models.FormatRequest, spec constants.PlatformSpec, maxPosts int) ([]models.Post, bool) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := buildFormatPrompt(req, spec, maxPosts)
	raw, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		s.logger.Warn("provider generation failed, using local splitter",
			"platform", req.Platform,
			"error", err,
		)
		return nil, false
	}

	posts, ok := parseReply(raw, maxPosts)
	if !ok {
		// The reply carried content but not the JSON shape; salvage it by
		// splitting the raw text.
		s.logger.Debug("provider reply unparsable, splitting raw text",
			"platform", req.Platform,
			"reply_length", len(raw),
		)
		posts = splitIntoPosts(raw, spec.CharLimit, maxPosts)
	}
	return posts, true
}

// Rewrite reworks a single post under a free-text instruction. Unlike
// Format there is no meaningful local fallback, so provider failures
// surface as an unsuccessful result.
func (s *FormatterService) Rewrite(ctx context.Context, req *models.RewriteRequest) (*models.FormatResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyText
	}
	if strings.TrimSpace(req.Instruction) == "" {
		return nil, ErrEmptyInstruction
	}

	spec := s.platformSpec(req.Platform)

	if s.generator == nil || !s.generator.Configured() {
		return &models.FormatResult{Success: false, Error: "content rewriting is currently unavailable"}, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generator.Generate(genCtx, buildRewritePrompt(req, spec))
	if err != nil {
		s.logger.Warn("provider rewrite failed", "platform", req.Platform, "error", err)
		return &models.FormatResult{Success: false, Error: "content rewriting is currently unavailable"}, nil
	}

	posts, ok := parseReply(raw, 1)
	if !ok || len(posts) == 0 {
		// A plain-text reply is still a usable rewrite.
		content := strings.TrimSpace(raw)
		if content == "" {
			return &models.FormatResult{Success: false, Error: "content rewriting is currently unavailable"}, nil
		}
		posts = finalizePosts([]string{truncate(content, spec.CharLimit)})
	}

	return s.result(posts[:1], false), nil
}

func (s *FormatterService) result(posts []models.Post, fallback bool) *models.FormatResult {
	if len(posts) == 0 {
		return &models.FormatResult{
			Success:  false,
			Error:    "Failed to generate thread",
			Fallback: fallback,
		}
	}
	return &models.FormatResult{
		Posts:           posts,
		Success:         true,
		TotalCharacters: totalCharacters(posts),
		Fallback:        fallback,
	}
}

// platformSpec resolves a platform name, defaulting to twitter for unknown
// platforms so a stale client never hard-fails.
func (s *FormatterService) platformSpec(platform string) constants.PlatformSpec {
	spec, ok := constants.GetPlatformSpec(platform)
	if !ok {
		spec, _ = constants.GetPlatformSpec(constants.PlatformTwitter)
	}
	return spec
}
