package handlers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/threadcutter/threadcutter-api/internal/http/mw"
	"github.com/threadcutter/threadcutter-api/internal/identity"
	"github.com/threadcutter/threadcutter-api/internal/models"
	"github.com/threadcutter/threadcutter-api/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func guestCtx() context.Context {
	return context.WithValue(context.Background(), mw.IdentityKey,
		identity.Identity{Key: "device:fp1", DeviceID: "fp1"})
}

func userCtx(userID string) context.Context {
	ctx := context.WithValue(context.Background(), mw.IdentityKey,
		identity.Identity{Key: "user:" + userID, UserID: userID})
	return context.WithValue(ctx, mw.UserClaimsKey, &mw.UserClaims{UserID: userID})
}

// ========================================
// In-memory repositories
// ========================================

type memUsageRepo struct {
	mu      sync.Mutex
	records map[string]*models.UsageRecord
}

func newMemUsageRepo() *memUsageRepo {
	return &memUsageRepo{records: make(map[string]*models.UsageRecord)}
}

func (m *memUsageRepo) Get(_ context.Context, identityKey, date string) (*models.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[identityKey+"|"+date]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memUsageRepo) Upsert(_ context.Context, record *models.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.records[record.IdentityKey+"|"+record.Date] = &cp
	return nil
}

func (m *memUsageRepo) DeleteOlderThan(_ context.Context, beforeDate string) (int64, error) {
	return 0, nil
}

type memSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*models.Subscription
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{subs: make(map[string]*models.Subscription)}
}

func (m *memSubscriptionRepo) Create(_ context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *memSubscriptionRepo) GetByID(_ context.Context, id string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSubscriptionRepo) GetActiveByUserID(_ context.Context, userID string, now time.Time) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *memSubscriptionRepo) GetByUserID(_ context.Context, userID string) ([]*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Subscription
	for _, s := range m.subs {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubscriptionRepo) Update(_ context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *memSubscriptionRepo) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments []*models.Payment
}

func newMemPaymentRepo() *memPaymentRepo { return &memPaymentRepo{} }

func (m *memPaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *payment
	m.payments = append(m.payments, &cp)
	return nil
}

func (m *memPaymentRepo) GetByUserID(_ context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
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

func (m *memPaymentRepo) GetByTransactionID(_ context.Context, transactionID string) (*models.Payment, error) {
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

type memChatRepo struct {
	mu    sync.Mutex
	chats map[string]*models.Chat
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{chats: make(map[string]*models.Chat)}
}

func (m *memChatRepo) Create(_ context.Context, chat *models.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *chat
	m.chats[chat.ID] = &cp
	return nil
}

func (m *memChatRepo) GetByID(_ context.Context, id string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memChatRepo) GetByUserID(_ context.Context, userID string, limit, offset int) ([]*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Chat
	for _, c := range m.chats {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memChatRepo) Update(_ context.Context, chat *models.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *chat
	m.chats[chat.ID] = &cp
	return nil
}

func (m *memChatRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, id)
	return nil
}

func (m *memChatRepo) DeleteOlderThan(_ context.Context, before time.Time) ([]string, error) {
	return nil, nil
}

type memMessageRepo struct {
	mu   sync.Mutex
	msgs map[string]*models.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{msgs: make(map[string]*models.Message)}
}

func (m *memMessageRepo) Create(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.msgs[msg.ID] = &cp
	return nil
}

func (m *memMessageRepo) GetByID(_ context.Context, id string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.msgs[id]
	if !ok {
		return nil, nil
	}
	cp := *msg
	return &cp, nil
}

func (m *memMessageRepo) GetByChatID(_ context.Context, chatID string) ([]*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Message
	for _, msg := range m.msgs {
		if msg.ChatID == chatID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memMessageRepo) Update(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.msgs[msg.ID] = &cp
	return nil
}

func (m *memMessageRepo) Delete(_ context.Context, id string) error {
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
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) Configured() bool { return f.configured }

// ========================================
// Service fixtures
// ========================================

type testServices struct {
	formatter *service.FormatterService
	ledger    *service.LedgerService
	chats     *service.ChatService
	billing   *service.BillingService
	usage     *memUsageRepo
	subs      *memSubscriptionRepo
}

func newTestServices(gen *fakeGenerator) *testServices {
	logger := testLogger()
	usage := newMemUsageRepo()
	subs := newMemSubscriptionRepo()
	return &testServices{
		formatter: service.NewFormatterService(gen, time.Second, logger),
		ledger:    service.NewLedgerService(usage, subs, logger),
		chats:     service.NewChatService(newMemChatRepo(), newMemMessageRepo(), logger),
		billing:   service.NewBillingService(subs, newMemPaymentRepo(), logger),
		usage:     usage,
		subs:      subs,
	}
}
