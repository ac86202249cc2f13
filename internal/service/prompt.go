package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/threadcutter/threadcutter-api/internal/constants"
	"github.com/threadcutter/threadcutter-api/internal/models"
)

// buildFormatPrompt assembles the provider prompt for a format request.
// The output-shape contract at the end is what makes replies machine
// parseable; keep it in sync with parseReply.
func buildFormatPrompt(req *models.FormatRequest, spec constants.PlatformSpec, maxPosts int) string {
	combinedTones := combineTones(req.Tones)

	emojiDirective := "NO - Do not use any emojis"
	if req.UseEmojis {
		emojiDirective = "YES - Use relevant emojis strategically to enhance engagement and readability"
	}

	tonesJSON, _ := json.Marshal(req.Tones)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert social media content creator and copywriter. Your task is to transform content for %s with multiple tone requirements and specific formatting.\n\n", req.Platform)
	fmt.Fprintf(&b, "CONTENT TO TRANSFORM: %q\n\n", req.Text)
	fmt.Fprintf(&b, "TONE REQUIREMENTS: %s\n\n", combinedTones)
	b.WriteString("PLATFORM SPECIFICATIONS:\n")
	fmt.Fprintf(&b, "- Platform: %s\n", req.Platform)
	fmt.Fprintf(&b, "- Character limit per post: %d\n", spec.CharLimit)
	fmt.Fprintf(&b, "- Platform features: %s\n", spec.Features)
	fmt.Fprintf(&b, "- Best practices: %s\n\n", spec.BestPractices)
	fmt.Fprintf(&b, "EMOJI USAGE: %s\n\n", emojiDirective)
	b.WriteString("REQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. Create engaging, %s-optimized content that combines all specified tones naturally\n", req.Platform)
	b.WriteString("2. Split into multiple posts if needed, keeping each within character limits\n")
	b.WriteString("3. Each post should be complete and engaging on its own\n")
	fmt.Fprintf(&b, "4. Maximum %d posts total\n", maxPosts)
	fmt.Fprintf(&b, "5. Include relevant hashtags appropriate for %s\n", req.Platform)
	b.WriteString("6. Add strategic mentions (@username) where relevant\n")
	b.WriteString("7. Ensure content flows naturally across posts if creating a thread/series\n\n")
	b.WriteString("OUTPUT FORMAT REQUIREMENT:\n")
	b.WriteString("Return ONLY a valid JSON object with this exact structure:\n")
	b.WriteString(`{
  "posts": [
    {
      "content": "The actual post content here",
      "characterCount": 150,
      "hashtags": ["hashtag1", "hashtag2"],
      "mentions": ["@username1", "@username2"]
    }
  ],
  "metadata": {
    "totalPosts": 1,
`)
	fmt.Fprintf(&b, "    \"platform\": %q,\n", req.Platform)
	fmt.Fprintf(&b, "    \"tones\": %s,\n", tonesJSON)
	fmt.Fprintf(&b, "    \"useEmojis\": %t,\n", req.UseEmojis)
	b.WriteString(`    "totalCharacters": 150
  }
}
`)
	b.WriteString("\nIMPORTANT:\n")
	b.WriteString("- Do not include any text before or after the JSON\n")
	fmt.Fprintf(&b, "- Ensure all content is appropriate and engaging for %s\n", req.Platform)
	b.WriteString("- Character count should be accurate for each post\n")
	b.WriteString("- Include empty arrays for hashtags/mentions if none are used\n")
	b.WriteString("- Make sure the JSON is properly formatted and valid\n")

	return b.String()
}

// buildRewritePrompt assembles the provider prompt for rewriting a single
// existing post under a free-text instruction.
func buildRewritePrompt(req *models.RewriteRequest, spec constants.PlatformSpec) string {
	combinedTones := combineTones(req.Tones)

	emojiDirective := "NO - Do not use any emojis"
	if req.UseEmojis {
		emojiDirective = "YES - Use relevant emojis strategically"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert social media copywriter. Rewrite the following %s post according to the instruction.\n\n", req.Platform)
	fmt.Fprintf(&b, "CURRENT POST: %q\n\n", req.Content)
	fmt.Fprintf(&b, "INSTRUCTION: %s\n\n", req.Instruction)
	fmt.Fprintf(&b, "TONE REQUIREMENTS: %s\n\n", combinedTones)
	fmt.Fprintf(&b, "CHARACTER LIMIT: %d\n", spec.CharLimit)
	fmt.Fprintf(&b, "EMOJI USAGE: %s\n\n", emojiDirective)
	b.WriteString("OUTPUT FORMAT REQUIREMENT:\n")
	b.WriteString("Return ONLY a valid JSON object with this exact structure:\n")
	b.WriteString(`{
  "posts": [
    {
      "content": "The rewritten post content here",
      "characterCount": 150,
      "hashtags": [],
      "mentions": []
    }
  ]
}
`)
	b.WriteString("\nIMPORTANT:\n")
	b.WriteString("- Return exactly one post\n")
	b.WriteString("- Do not include any text before or after the JSON\n")
	b.WriteString("- Stay within the character limit\n")

	return b.String()
}

// combineTones joins the instruction for each requested tone. Unknown tones
// fall back to the neutral instruction.
func combineTones(tones []string) string {
	if len(tones) == 0 {
		return constants.ToneInstruction("neutral")
	}
	parts := make([]string, 0, len(tones))
	for _, tone := range tones {
		parts = append(parts, constants.ToneInstruction(tone))
	}
	return strings.Join(parts, ". Additionally, ")
}
