package notification

import (
	"context"
	"errors"

	notificationerrors "leavedesk/internal/notification/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	GetUnread(ctx context.Context, userID string) ([]NotificationResponse, error)

	// MarkRead flags one of the caller's own notifications as read.
	// Idempotent: re-reading an already read notification is a no-op.
	MarkRead(ctx context.Context, userID, notificationID string) (MarkReadResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetUnread(ctx context.Context, userID string) ([]NotificationResponse, error) {
	notifications, err := s.repo.FindUnreadByUser(ctx, userID)
	if err != nil {
		s.logger.Error("list unread notifications failed", zap.Error(err))
		return nil, err
	}

	resp := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = mapToResponse(n)
	}
	return resp, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID string) (MarkReadResponse, error) {
	if _, err := uuid.Parse(notificationID); err != nil {
		return MarkReadResponse{}, notificationerrors.ErrInvalidNotificationID
	}

	n, err := s.repo.FindByIDAndUser(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MarkReadResponse{}, notificationerrors.ErrNotificationNotFound
		}
		s.logger.Error("mark notification read lookup failed", zap.Error(err))
		return MarkReadResponse{}, err
	}

	if !n.IsRead {
		n.IsRead = true
		if err := s.repo.Update(ctx, n); err != nil {
			s.logger.Error("mark notification read update failed", zap.Error(err))
			return MarkReadResponse{}, err
		}
	}

	s.logger.Debug("notification marked read",
		zap.String("notification_id", notificationID),
		zap.String("user_id", userID),
	)

	return MarkReadResponse{Message: "Notification marked as read"}, nil
}

func mapToResponse(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
