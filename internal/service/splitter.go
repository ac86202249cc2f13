package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/threadcutter/threadcutter-api/internal/constants"
	"github.com/threadcutter/threadcutter-api/internal/models"
)

var (
	sentenceRe = regexp.MustCompile(`[.!?]+`)
	hashtagRe  = regexp.MustCompile(`#\w+`)
	mentionRe  = regexp.MustCompile(`@\w+`)
)

// extractHashtags returns the hashtags in text without the leading '#'.
func extractHashtags(text string) []string {
	matches := hashtagRe.FindAllString(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.TrimPrefix(m, "#"))
	}
	return tags
}

// extractMentions returns the mentions in text, '@' included.
func extractMentions(text string) []string {
	matches := mentionRe.FindAllString(text, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}

// splitIntoPosts splits free text into platform-sized posts without calling
// the provider. Sentences are accumulated greedily; each post keeps a
// reserve under the platform limit so clients can decorate without
// overflowing. Text with no sentence under the limit collapses to a single
// truncated post.
func splitIntoPosts(text string, charLimit, maxPosts int) []models.Post {
	contents := splitContents(text, charLimit)
	if maxPosts > 0 && len(contents) > maxPosts {
		contents = contents[:maxPosts]
	}
	return finalizePosts(contents)
}

func splitContents(text string, charLimit int) []string {
	budget := charLimit - constants.SplitReserve

	var contents []string
	var current string
	for _, sentence := range sentenceRe.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		potential := sentence + "."
		if current != "" {
			potential = current + " " + sentence + "."
		}

		if utf8.RuneCountInString(potential) <= budget {
			current = potential
			continue
		}
		if current != "" {
			contents = append(contents, current)
			current = ""
		}
		// A sentence that cannot fit a post on its own is left for the
		// truncation path; emitting it whole would break the length bound.
		if candidate := sentence + "."; utf8.RuneCountInString(candidate) <= budget {
			current = candidate
		}
	}
	if current != "" {
		contents = append(contents, current)
	}

	if len(contents) == 0 {
		max := charLimit - constants.TruncateReserve - utf8.RuneCountInString(constants.Ellipsis)
		contents = []string{truncate(text, max) + constants.Ellipsis}
	}
	return contents
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// finalizePosts builds Posts from raw contents: assigns IDs, dense 1-based
// ordering, character counts, and extracted hashtags/mentions.
func finalizePosts(contents []string) []models.Post {
	posts := make([]models.Post, 0, len(contents))
	for i, content := range contents {
		posts = append(posts, models.Post{
			ID:             ulid.Make().String(),
			Content:        content,
			Order:          i + 1,
			TotalInBatch:   len(contents),
			CharacterCount: utf8.RuneCountInString(content),
			Hashtags:       extractHashtags(content),
			Mentions:       extractMentions(content),
		})
	}
	return posts
}

// totalCharacters sums the character counts across posts.
func totalCharacters(posts []models.Post) int {
	total := 0
	for _, p := range posts {
		total += p.CharacterCount
	}
	return total
}
