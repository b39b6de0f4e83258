package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Publisher pushes a freshly created notification to connected clients.
type Publisher interface {
	Publish(userID uuid.UUID, n *Notification)
}

// Pusher delivers a notification to the user's registered devices.
type Pusher interface {
	Push(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string)
}

// Service handles notification logic
type Service struct {
	repo      Repository
	publisher Publisher
	pusher    Pusher
}

// NewService creates notification service. Publisher and pusher may be
// nil.
func NewService(repo Repository, publisher Publisher, pusher Pusher) *Service {
	return &Service{repo: repo, publisher: publisher, pusher: pusher}
}

// Create persists a notification and pushes it to connected clients.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, kind Kind, message string, amount int64, referenceID uuid.UUID, link string) (*Notification, error) {
	n := &Notification{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        kind,
		Message:     message,
		Amount:      amount,
		ReferenceID: referenceID,
		Link:        link,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(userID, n)
	}
	if s.pusher != nil {
		s.pusher.Push(ctx, userID, "GiftBay", message, map[string]string{
			"kind": string(kind),
			"link": link,
		})
	}
	return n, nil
}

// List returns notifications for a user, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount returns the unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks a single notification as read
func (s *Service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, userID, id)
}

// MarkAllAsRead marks all of a user's notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Emit is the fire-and-forget entry point used after ledger mutations
// and request transitions. It returns immediately; the write happens on
// its own goroutine with a fresh context, and failures are logged and
// swallowed. A lost notification never affects the mutation it followed.
func (s *Service) Emit(userID uuid.UUID, kind Kind, message string, amount int64, referenceID uuid.UUID, link string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := s.Create(ctx, userID, kind, message, amount, referenceID, link); err != nil {
			log.Warn().Err(err).
				Str("user_id", userID.String()).
				Str("kind", string(kind)).
				Msg("notification write failed")
		}
	}()
}
