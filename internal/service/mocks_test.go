package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/threadcutter/threadcutter-api/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ========================================
// Mock usage repository
// ========================================

type mockUsageRepo struct {
	mu      sync.Mutex
	records map[string]*models.UsageRecord // key: identityKey + "|" + date
	getErr  error
	putErr  error
}

func newMockUsageRepo() *mockUsageRepo {
	return &mockUsageRepo{records: make(map[string]*models.UsageRecord)}
}

func (m *mockUsageRepo) Get(_ context.Context, identityKey, date string) (*models.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.records[identityKey+"|"+date]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *mockUsageRepo) Upsert(_ context.Context, record *models.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	cp := *record
	m.records[record.IdentityKey+"|"+record.Date] = &cp
	return nil
}

func (m *mockUsageRepo) DeleteOlderThan(_ context.Context, beforeDate string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, r := range m.records {
		if r.Date < beforeDate {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

// ========================================
// Mock subscription repository
// ========================================

type mockSubscriptionRepo struct {
	mu     sync.Mutex
	subs   map[string]*models.Subscription
	getErr error
}

func newMockSubscriptionRepo() *mockSubscriptionRepo {
	return &mockSubscriptionRepo{subs: make(map[string]*models.Subscription)}
}

func (m *mockSubscriptionRepo) Create(_ context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *mockSubscriptionRepo) GetByID(_ context.Context, id string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockSubscriptionRepo) GetActiveByUserID(_ context.Context, userID string, now time.Time) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var best *models.Subscription
	for _, s := range m.subs {
		if s.UserID != userID || s.Status != models.SubscriptionStatusActive || !s.ExpiresAt.After(now) {
			continue
		}
		if best == nil || s.ExpiresAt.After(best.ExpiresAt) {
			best = s
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (m *mockSubscriptionRepo) GetByUserID(_ context.Context, userID string) ([]*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Subscription
	for _, s := range m.subs {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockSubscriptionRepo) Update(_ context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[sub.ID]; !ok {
		return errors.New("subscription not found")
	}
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *mockSubscriptionRepo) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.subs {
		if s.Status == models.SubscriptionStatusActive && !s.ExpiresAt.After(now) {
			s.Status = models.SubscriptionStatusExpired
			n++
		}
	}
	return n, nil
}

// ========================================
// Mock payment repository
// ========================================

type mockPaymentRepo struct {
	mu       sync.Mutex
	payments []*models.Payment
	putErr   error
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{}
}

func (m *mockPaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	cp := *payment
	m.payments = append(m.payments, &cp)
	return nil
}

func (m *mockPaymentRepo) GetByUserID(_ context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) GetByTransactionID(_ context.Context, transactionID string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TransactionID == transactionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// ========================================
// Mock chat repositories
// ========================================

type mockChatRepo struct {
	mu    sync.Mutex
	chats map[string]*models.Chat
}

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{chats: make(map[string]*models.Chat)}
}

func (m *mockChatRepo) Create(_ context.Context, chat *models.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *chat
	m.chats[chat.ID] = &cp
	return nil
}

func (m *mockChatRepo) GetByID(_ context.Context, id string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockChatRepo) GetByUserID(_ context.Context, userID string, limit, offset int) ([]*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Chat
	for _, c := range m.chats {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockChatRepo) Update(_ context.Context, chat *models.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[chat.ID]; !ok {
		return errors.New("chat not found")
	}
	cp := *chat
	m.chats[chat.ID] = &cp
	return nil
}

func (m *mockChatRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, id)
	return nil
}

func (m *mockChatRepo) DeleteOlderThan(_ context.Context, before time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, c := range m.chats {
		if c.UpdatedAt.Before(before) {
			delete(m.chats, id)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type mockMessageRepo struct {
	mu   sync.Mutex
	msgs map[string]*models.Message
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{msgs: make(map[string]*models.Message)}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.msgs[msg.ID] = &cp
	return nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.msgs[id]
	if !ok {
		return nil, nil
	}
	cp := *msg
	return &cp, nil
}

func (m *mockMessageRepo) GetByChatID(_ context.Context, chatID string) ([]*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Message
	for _, msg := range m.msgs {
		if msg.ChatID == chatID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockMessageRepo) Update(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.msgs[msg.ID]; !ok {
		return errors.New("message not found")
	}
	cp := *msg
	m.msgs[msg.ID] = &cp
	return nil
}

func (m *mockMessageRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.msgs, id)
	return nil
}

// ========================================
// Fake generator
// ========================================

type fakeGenerator struct {
	reply      string
	err        error
	configured bool
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) Configured() bool {
	return f.configured
}
