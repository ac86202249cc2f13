package service

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/threadcutter/threadcutter-api/internal/models"
)

// replyPost is the post shape the prompt asks the provider to emit.
// characterCount from the provider is untrusted and recomputed locally.
type replyPost struct {
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
	Mentions []string `json:"mentions"`
}

type providerReply struct {
	Posts []replyPost `json:"posts"`
}

// parseReply interprets raw model output as the JSON contract from the
// prompt. It returns (posts, true) when the reply parses, or (nil, false)
// when it does not; callers then fall through to local sentence splitting
// of the raw text. Replies wrapped in markdown fences or prose still parse
// as long as a JSON object is embedded.
func parseReply(raw string, maxPosts int) ([]models.Post, bool) {
	jsonStr := extractJSONObject(raw)
	if jsonStr == "" {
		return nil, false
	}

	var reply providerReply
	if err := json.Unmarshal([]byte(jsonStr), &reply); err != nil {
		return nil, false
	}
	if len(reply.Posts) == 0 {
		return nil, false
	}

	contents := make([]string, 0, len(reply.Posts))
	stated := make([]replyPost, 0, len(reply.Posts))
	for _, p := range reply.Posts {
		content := strings.TrimSpace(p.Content)
		if content == "" {
			continue
		}
		contents = append(contents, content)
		stated = append(stated, p)
	}
	if len(contents) == 0 {
		return nil, false
	}
	if maxPosts > 0 && len(contents) > maxPosts {
		contents = contents[:maxPosts]
		stated = stated[:maxPosts]
	}

	posts := make([]models.Post, 0, len(contents))
	for i, content := range contents {
		hashtags := stated[i].Hashtags
		if hashtags == nil {
			hashtags = extractHashtags(content)
		}
		mentions := stated[i].Mentions
		if mentions == nil {
			mentions = extractMentions(content)
		}
		posts = append(posts, models.Post{
			ID:             ulid.Make().String(),
			Content:        content,
			Order:          i + 1,
			TotalInBatch:   len(contents),
			CharacterCount: utf8.RuneCountInString(content),
			Hashtags:       normalizeHashtags(hashtags),
			Mentions:       mentions,
		})
	}
	return posts, true
}

// extractJSONObject returns the outermost {...} span of s, or "" when no
// object is present.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// normalizeHashtags strips any leading '#' the provider included.
func normalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
