package constants

import "sync"

// platformsMu protects concurrent access to the Platforms map.
var platformsMu sync.RWMutex

// Platform names
const (
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
	PlatformThreads   = "threads"
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformTikTok    = "tiktok"
)

// Splitter constants for the deterministic fallback path.
const (
	// SplitReserve is the safety margin kept free in every post for a
	// thread-index prefix and trailing punctuation.
	SplitReserve = 50
	// TruncateReserve is the margin kept free when an unsplittable text
	// is cut down to a single post with an ellipsis appended.
	TruncateReserve = 10
	// Ellipsis is appended to a truncated single post.
	Ellipsis = "..."
)

// PlatformSpec describes a target platform's character limit and the
// conventions the provider prompt should follow for it.
type PlatformSpec struct {
	DisplayName   string `json:"display_name"`
	CharLimit     int    `json:"char_limit"`
	Features      string `json:"features"`
	BestPractices string `json:"best_practices"`
}

// Platforms defines the specs for each supported platform.
var Platforms = map[string]PlatformSpec{
	PlatformTwitter: {
		DisplayName:   "Twitter/X",
		CharLimit:     280,
		Features:      "Use threads for longer content, trending hashtags, @mentions, and Twitter-specific formatting",
		BestPractices: "Keep tweets punchy, use line breaks for readability, encourage engagement",
	},
	PlatformLinkedIn: {
		DisplayName:   "LinkedIn",
		CharLimit:     3000,
		Features:      "Professional networking focus, industry insights, thought leadership, professional hashtags",
		BestPractices: "Start with a hook, use white space, end with a question or call-to-action",
	},
	PlatformThreads: {
		DisplayName:   "Threads",
		CharLimit:     500,
		Features:      "Instagram's text-based platform, casual but engaging, visual storytelling",
		BestPractices: "Use thread format for longer stories, include relevant hashtags, encourage discussion",
	},
	PlatformInstagram: {
		DisplayName:   "Instagram",
		CharLimit:     2200,
		Features:      "Visual-first platform, lifestyle focus, story-driven captions, hashtag strategy",
		BestPractices: "Start strong, tell a story, use strategic hashtags, include call-to-action",
	},
	PlatformFacebook: {
		DisplayName:   "Facebook",
		CharLimit:     63206,
		Features:      "Community-focused, longer form content, link sharing, event promotion",
		BestPractices: "Use engaging openings, break up long text, encourage comments and shares",
	},
	PlatformTikTok: {
		DisplayName:   "TikTok",
		CharLimit:     300,
		Features:      "Short, catchy descriptions for videos, trending sounds, challenges",
		BestPractices: "Use trending hashtags, reference current events, create curiosity",
	},
}

// GetPlatformSpec returns the spec for a platform and whether it is known.
// Thread-safe for concurrent access.
func GetPlatformSpec(platform string) (PlatformSpec, bool) {
	platformsMu.RLock()
	defer platformsMu.RUnlock()

	spec, ok := Platforms[platform]
	return spec, ok
}

// UpdatePlatformSpecs replaces specs for the named platforms. Called by
// the settings loader when S3-backed overrides are configured.
// Thread-safe for concurrent access.
func UpdatePlatformSpecs(overrides map[string]PlatformSpec) {
	platformsMu.Lock()
	defer platformsMu.Unlock()

	for name, spec := range overrides {
		if _, ok := Platforms[name]; ok {
			Platforms[name] = spec
		}
	}
}

// ToneInstructions maps each tone tag to the descriptive phrase embedded
// in the provider prompt. Multiple tones are concatenated as additive
// instructions, not a negotiated blend.
var ToneInstructions = map[string]string{
	"funny":          "Use humor, wit, clever wordplay, and entertaining content that makes people smile or laugh",
	"creative":       "Be imaginative, unique, artistic, and use creative storytelling with fresh perspectives",
	"direct":         "Be clear, concise, straightforward, and get straight to the point without fluff",
	"formal":         "Use professional, business-appropriate language with proper grammar and respectful tone",
	"neutral":        "Maintain a balanced, informative approach that's neither too casual nor too formal",
	"inspirational":  "Motivate and uplift with positive messaging and encouraging language",
	"conversational": "Write as if talking to a friend - casual, relatable, and approachable",
	"educational":    "Focus on teaching, explaining, and providing valuable information clearly",
	"emotional":      "Connect deeply with feelings and create emotional resonance with the audience",
	"bold":           "Be confident, assertive, and take strong positions with powerful language",
}

// ToneInstruction returns the prompt phrase for a tone, defaulting to neutral.
func ToneInstruction(tone string) string {
	if instr, ok := ToneInstructions[tone]; ok {
		return instr
	}
	return ToneInstructions["neutral"]
}

// KnownTone reports whether a tone tag is recognized.
func KnownTone(tone string) bool {
	_, ok := ToneInstructions[tone]
	return ok
}
