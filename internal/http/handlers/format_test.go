package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/threadcutter/threadcutter-api/internal/models"
)

func newFormatHandler(svcs *testServices) *FormatHandler {
	return NewFormatHandler(svcs.formatter, svcs.ledger, svcs.chats, testLogger())
}

func formatInput(text string) *FormatInput {
	input := &FormatInput{}
	input.Body.Text = text
	input.Body.Platform = "twitter"
	return input
}

func TestFormatChargesQuota(t *testing.T) {
	svcs := newTestServices(&fakeGenerator{configured: false})
	h := newFormatHandler(svcs)

	output, err := h.Format(guestCtx(), formatInput("First sentence. Second sentence."))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !output.Body.Success {
		t.Errorf("Error = %q", output.Body.Error)
	}
	if !output.Body.Fallback {
		t.Error("unconfigured provider should use the fallback splitter")
	}
	if output.Body.Usage.Used != 1 || output.Body.Usage.Remaining != 2 {
		t.Errorf("Usage = %+v, want used 1 remaining 2", output.Body.Usage)
	}
}

func TestFormatQuotaExhausted(t *testing.T) {
	svcs := newTestServices(&fakeGenerator{configured: false})
	h := newFormatHandler(svcs)

	ctx := guestCtx()
	for i := 0; i < 3; i++ {
		if _, err := h.Format(ctx, formatInput("Some text to thread.")); err != nil {
			t.Fatalf("Format %d: %v", i, err)
		}
	}

	_, err := h.Format(ctx, formatInput("One more."))
	if err == nil {
		t.Fatal("expected quota error")
	}
	var status huma.StatusError
	if !asStatusError(err, &status) || status.GetStatus() != 429 {
		t.Errorf("error = %v, want 429", err)
	}
	// The rejected request must not have been charged
	if got := svcs.ledger.GetUsage(ctx, getIdentity(ctx)).Record.Count; got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}

func TestFormatUnsuccessfulResultNotCharged(t *testing.T) {
	svcs := newTestServices(&fakeGenerator{configured: false})
	h := newFormatHandler(svcs)

	ctx := guestCtx()
	_, err := h.Format(ctx, formatInput("   "))
	var status huma.StatusError
	if !asStatusError(err, &status) || status.GetStatus() != 400 {
		t.Fatalf("error = %v, want 400", err)
	}
	if got := svcs.ledger.GetUsage(ctx, getIdentity(ctx)).Record.Count; got != 0 {
		t.Errorf("Count = %d, want 0 for a rejected request", got)
	}
}

func TestFormatPremiumFeatureGates(t *testing.T) {
	svcs := newTestServices(&fakeGenerator{configured: false})
	h := newFormatHandler(svcs)

	multiTone := formatInput("Gated request text.")
	multiTone.Body.Tones = []string{"funny", "formal"}
	_, err := h.Format(guestCtx(), multiTone)
	var status huma.StatusError
	if !asStatusError(err, &status) || status.GetStatus() != 403 {
		t.Errorf("multi-tone guest error = %v, want 403", err)
	}

	emojis := formatInput("Gated request text.")
	emojis.Body.UseEmojis = true
	_, err = h.Format(guestCtx(), emojis)
	if !asStatusError(err, &status) || status.GetStatus() != 403 {
		t.Errorf("emoji guest error = %v, want 403", err)
	}

	// A single tone without emojis passes for everyone
	single := formatInput("Allowed request text.")
	single.Body.Tones = []string{"funny"}
	if _, err := h.Format(guestCtx(), single); err != nil {
		t.Errorf("single tone: %v", err)
	}
}

func asStatusError(err error, target *huma.StatusError) bool {
	se, ok := err.(huma.StatusError)
	if ok {
		*target = se
	}
	return ok
}

func TestFormatProviderReply(t *testing.T) {
	gen := &fakeGenerator{
		configured: true,
		reply:      `{"posts":[{"content":"From the provider #go"}]}`,
	}
	h := newFormatHandler(newTestServices(gen))

	output, err := h.Format(guestCtx(), formatInput("Thread this for me please."))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if output.Body.Fallback {
		t.Error("provider path should not be marked fallback")
	}
	if len(output.Body.Posts) != 1 || output.Body.Posts[0].Content != "From the provider #go" {
		t.Errorf("Posts = %+v", output.Body.Posts)
	}
	if output.Body.TotalCharacters != output.Body.Posts[0].CharacterCount {
		t.Errorf("TotalCharacters = %d", output.Body.TotalCharacters)
	}
}

func TestFormatRecordsExchangeInChat(t *testing.T) {
	svcs := newTestServices(&fakeGenerator{configured: false})
	h := newFormatHandler(svcs)

	ctx := userCtx("u1")
	chat, err := svcs.chats.CreateChat(ctx, "u1", "", "twitter", nil, false)
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	input := formatInput("An announcement worth keeping.")
	input.Body.ChatID = chat.ID
	output, err := h.Format(ctx, input)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if output.Body.ChatMessageID == "" {
		t.Fatal("expected a stored chat message ID")
	}

	stored, err := svcs.chats.GetChat(ctx, "u1", chat.ID)
	if err != nil {
		t.Fatalf("GetChat: %v", err)
	}
	if len(stored.Messages) != 2 {
		t.Errorf("got %d messages, want user + ai pair", len(stored.Messages))
	}
}

func TestFormatIgnoresChatForAnonymous(t *testing.T) {
	svcs := newTestServices(&fakeGenerator{configured: false})
	h := newFormatHandler(svcs)

	input := formatInput("Anonymous text.")
	input.Body.ChatID = "some-chat"
	output, err := h.Format(guestCtx(), input)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if output.Body.ChatMessageID != "" {
		t.Error("anonymous requests must not write chat history")
	}
}

func TestFormatPremiumUnlimited(t *testing.T) {
	svcs := newTestServices(&fakeGenerator{configured: false})
	svcs.subs.Create(context.Background(), &models.Subscription{
		ID:        "sub1",
		UserID:    "u1",
		Status:    models.SubscriptionStatusActive,
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	})
	h := newFormatHandler(svcs)

	ctx := userCtx("u1")
	for i := 0; i < 8; i++ {
		output, err := h.Format(ctx, formatInput("Premium text to thread."))
		if err != nil {
			t.Fatalf("Format %d: %v", i, err)
		}
		if !output.Body.Usage.Unlimited {
			t.Fatal("premium usage should be unlimited")
		}
	}
}

func TestRewriteHandler(t *testing.T) {
	gen := &fakeGenerator{
		configured: true,
		reply:      `{"posts":[{"content":"Shorter now"}]}`,
	}
	h := newFormatHandler(newTestServices(gen))

	input := &RewriteInput{}
	input.Body.Content = "A long rambling post that goes on"
	input.Body.Instruction = "make it shorter"
	input.Body.Platform = "twitter"

	output, err := h.Rewrite(guestCtx(), input)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !output.Body.Success || output.Body.Posts[0].Content != "Shorter now" {
		t.Errorf("output = %+v", output.Body)
	}
}

func TestRewriteUnavailableWithoutProvider(t *testing.T) {
	h := newFormatHandler(newTestServices(&fakeGenerator{configured: false}))

	input := &RewriteInput{}
	input.Body.Content = "content"
	input.Body.Instruction = "rewrite"

	output, err := h.Rewrite(guestCtx(), input)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if output.Body.Success {
		t.Error("rewrite should be unavailable without a provider")
	}
	if !strings.Contains(output.Body.Error, "unavailable") {
		t.Errorf("Error = %q", output.Body.Error)
	}
}
