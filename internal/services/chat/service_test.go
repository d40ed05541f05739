package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/common"
	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/models"
	"github.com/omerch/updatescout/internal/services/advisor"
	"github.com/omerch/updatescout/internal/services/devices"
	"github.com/omerch/updatescout/internal/services/quota"
)

type recordingTransport struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingTransport) Send(_ context.Context, _ string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return nil
}

func (r *recordingTransport) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		t.Fatal("no reply was sent")
	}
	return r.sent[len(r.sent)-1]
}

type memQuotaStorage struct {
	quotas map[string]*models.UserQuota
}

func (m *memQuotaStorage) Get(_ context.Context, userID string) (*models.UserQuota, error) {
	q, ok := m.quotas[userID]
	if !ok {
		return nil, interfaces.ErrQuotaNotFound
	}
	copied := *q
	return &copied, nil
}

func (m *memQuotaStorage) Upsert(_ context.Context, q *models.UserQuota) error {
	copied := *q
	m.quotas[q.UserID] = &copied
	return nil
}

func (m *memQuotaStorage) ResetAll(_ context.Context, windowStart time.Time) (int, error) {
	for _, q := range m.quotas {
		q.Used = 0
		q.WindowStart = windowStart
	}
	return len(m.quotas), nil
}

func (m *memQuotaStorage) Count(_ context.Context) (int, error) {
	return len(m.quotas), nil
}

func newTestChatService(t *testing.T, dailyLimit int) (*Service, *recordingTransport) {
	t.Helper()
	logger := arbor.NewLogger()

	data, err := devices.LoadCatalogData()
	if err != nil {
		t.Fatalf("LoadCatalogData: %v", err)
	}
	advisorService := advisor.NewService(common.NewDefaultConfig(), advisor.Deps{
		Catalog: devices.NewCatalog(data, logger),
	}, logger)

	quotaService := quota.NewService(&memQuotaStorage{quotas: make(map[string]*models.UserQuota)}, dailyLimit, logger)

	transport := &recordingTransport{}
	return NewService(advisorService, quotaService, transport, logger), transport
}

func TestHandleMessageRepliesWithAdvice(t *testing.T) {
	service, transport := newTestChatService(t, 10)

	err := service.HandleMessage(context.Background(), interfaces.IncomingMessage{
		ChatID: "chat-1",
		UserID: "user-1",
		Text:   "Should I update my Galaxy S24 to One UI 7?",
	})
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	reply := transport.last(t)
	if reply == "" {
		t.Fatal("empty reply")
	}
	if !strings.Contains(reply, "Limited information") {
		t.Errorf("no-providers run should be labeled limited, got %q", reply)
	}
}

func TestHandleMessageQuotaExhausted(t *testing.T) {
	service, transport := newTestChatService(t, 1)
	ctx := context.Background()
	msg := interfaces.IncomingMessage{ChatID: "chat-1", UserID: "user-1", Text: "Pixel 8 Android 15"}

	if err := service.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("first HandleMessage: %v", err)
	}
	if err := service.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("second HandleMessage: %v", err)
	}

	reply := transport.last(t)
	if reply != quotaExhaustedReply {
		t.Errorf("reply = %q, want quota-exhausted message", reply)
	}
}

func TestHandleMessageEmptyTextPrompts(t *testing.T) {
	service, transport := newTestChatService(t, 10)

	if err := service.HandleMessage(context.Background(), interfaces.IncomingMessage{
		ChatID: "chat-1",
		UserID: "user-1",
		Text:   "   ",
	}); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	reply := transport.last(t)
	if !strings.Contains(reply, "device") {
		t.Errorf("empty message should prompt for a device, got %q", reply)
	}
}
