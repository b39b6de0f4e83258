package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/giftbay/giftbay-api/internal/domain/notification"
)

// Notifier is the best-effort notification sink; satisfied by
// notification.Service.
type Notifier interface {
	Emit(userID uuid.UUID, kind notification.Kind, message string, amount int64, referenceID uuid.UUID, link string)
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, subject, message string, referenceID uuid.NullUUID) (*Report, error) {
	now := time.Now().UTC()
	rep := &Report{
		ID:          uuid.New(),
		UserID:      userID,
		Subject:     subject,
		Message:     message,
		ReferenceID: referenceID,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		return nil, err
	}
	log.Info().Str("report_id", rep.ID.String()).Str("user_id", userID.String()).Msg("report filed")
	return rep, nil
}

// Resolve closes an open report with the admin's reply.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, adminReply string) (*Report, error) {
	if err := s.repo.Resolve(ctx, id, adminReply); err != nil {
		return nil, err
	}
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Emit(rep.UserID, notification.KindAnnouncement,
			"Your report \""+rep.Subject+"\" was resolved", 0, rep.ID, "/reports")
	}
	return rep, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Report, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*Report, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, status, limit, offset)
}
