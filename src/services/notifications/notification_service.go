package notifications

import (
	"context"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/repositories"
)

// NotificationService serves the per-user notification stream that the
// notifications consumer materializes from social events.
type NotificationService struct {
	repo *repositories.NotificationRepository
}

func NewNotificationService(repo *repositories.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) ListFor(ctx context.Context, actor domain.Identity, limit int) ([]entities.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListFor(ctx, actor.UserID, limit)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor domain.Identity) error {
	return s.repo.MarkAllRead(ctx, actor.UserID)
}
