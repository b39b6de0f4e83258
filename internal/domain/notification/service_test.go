package notification_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/domain/notification"
)

type memRepo struct {
	mu   sync.Mutex
	rows []*notification.Notification
}

func (r *memRepo) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].UserID == userID {
			cp := *r.rows[i]
			out = append(out, &cp)
		}
	}
	if offset < len(out) {
		out = out[offset:]
	} else {
		out = nil
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) CountUnreadByUser(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) MarkAsRead(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, row := range r.rows {
		if row.UserID == userID && row.ID == id {
			row.IsRead = true
			row.ReadAt = &now
		}
	}
	return nil
}

func (r *memRepo) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, row := range r.rows {
		if row.UserID == userID {
			row.IsRead = true
			row.ReadAt = &now
		}
	}
	return nil
}

type capturePublisher struct {
	mu   sync.Mutex
	seen []*notification.Notification
}

func (p *capturePublisher) Publish(_ uuid.UUID, n *notification.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, n)
}

func TestCreatePersistsAndPublishes(t *testing.T) {
	repo := &memRepo{}
	pub := &capturePublisher{}
	svc := notification.NewService(repo, pub, nil)

	userID := uuid.New()
	refID := uuid.New()

	n, err := svc.Create(context.Background(), userID, notification.KindWalletCredit,
		"₦1,500.00 added to your wallet", 150000, refID, "/wallet")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.ID == uuid.Nil {
		t.Fatal("expected a generated id")
	}

	list, err := svc.List(context.Background(), userID, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}
	if list[0].Amount != 150000 || list[0].Kind != notification.KindWalletCredit {
		t.Fatalf("unexpected notification: %+v", list[0])
	}

	pub.mu.Lock()
	published := len(pub.seen)
	pub.mu.Unlock()
	if published != 1 {
		t.Fatalf("expected 1 publish, got %d", published)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	repo := &memRepo{}
	svc := notification.NewService(repo, nil, nil)

	userID := uuid.New()
	first, err := svc.Create(context.Background(), userID, notification.KindPayoutStatus, "Your payout is on its way", 0, uuid.New(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), userID, notification.KindAnnouncement, "Welcome to GiftBay", 0, uuid.Nil, ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	unread, err := svc.GetUnreadCount(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetUnreadCount: %v", err)
	}
	if unread != 2 {
		t.Fatalf("expected 2 unread, got %d", unread)
	}

	if err := svc.MarkAsRead(context.Background(), userID, first.ID); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	unread, _ = svc.GetUnreadCount(context.Background(), userID)
	if unread != 1 {
		t.Fatalf("expected 1 unread after MarkAsRead, got %d", unread)
	}

	if err := svc.MarkAllAsRead(context.Background(), userID); err != nil {
		t.Fatalf("MarkAllAsRead: %v", err)
	}
	unread, _ = svc.GetUnreadCount(context.Background(), userID)
	if unread != 0 {
		t.Fatalf("expected 0 unread after MarkAllAsRead, got %d", unread)
	}
}

func TestEmitNeverBlocksOnRepoFailure(t *testing.T) {
	svc := notification.NewService(failingRepo{}, nil, nil)

	done := make(chan struct{})
	go func() {
		svc.Emit(uuid.New(), notification.KindEthStatus, "ETH sent", 0, uuid.New(), "")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a failing repository")
	}
}

type failingRepo struct{}

func (failingRepo) Create(context.Context, *notification.Notification) error {
	return context.DeadlineExceeded
}
func (failingRepo) ListByUser(context.Context, uuid.UUID, int, int) ([]*notification.Notification, error) {
	return nil, nil
}
func (failingRepo) CountUnreadByUser(context.Context, uuid.UUID) (int, error) { return 0, nil }
func (failingRepo) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) error    { return nil }
func (failingRepo) MarkAllAsRead(context.Context, uuid.UUID) error            { return nil }
