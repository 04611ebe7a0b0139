package user

import (
	"context"
	"errors"

	"leavedesk/internal/mailer"
	usererrors "leavedesk/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	GetAll(ctx context.Context) ([]UserResponse, error)
	GetPending(ctx context.Context) ([]UserResponse, error)
	Approve(ctx context.Context, id string) (ApproveUserResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	mail   mailer.Sender
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, mail mailer.Sender, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{db: db, repo: repo, mail: mail, logger: l}
}

func (s *service) GetAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(users), nil
}

func (s *service) GetPending(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindPending(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(users), nil
}

func (s *service) Approve(ctx context.Context, id string) (ApproveUserResponse, error) {
	s.logger.Debug("approve user requested", zap.String("user_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return ApproveUserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApproveUserResponse{}, usererrors.ErrUserNotFound
		}
		s.logger.Error("approve user lookup failed", zap.String("user_id", id), zap.Error(err))
		return ApproveUserResponse{}, err
	}

	// Idempotent: a second approve is a no-op, reported distinctly so the
	// admin UI can tell.
	if u.IsApproved {
		return ApproveUserResponse{User: mapToResponse(*u), AlreadyApproved: true}, nil
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("approve user begin tx failed", zap.Error(tx.Error))
		return ApproveUserResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	u.IsApproved = true
	if err := qtx.Update(ctx, u); err != nil {
		s.logger.Error("approve user persist failed", zap.String("user_id", id), zap.Error(err))
		return ApproveUserResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("approve user commit failed", zap.String("user_id", id), zap.Error(err))
		return ApproveUserResponse{}, err
	}

	s.logger.Info("approve user success",
		zap.String("user_id", id),
		zap.String("username", u.Username),
	)

	// Best-effort, after commit. A delivery failure is not a business
	// failure.
	if err := s.mail.Send(
		u.Email,
		"Account Approved",
		"Your account has been approved. You can now login to the system.",
	); err != nil {
		s.logger.Warn("approve user email failed", zap.String("user_id", id), zap.Error(err))
	}

	return ApproveUserResponse{User: mapToResponse(*u), AlreadyApproved: false}, nil
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsApproved: u.IsApproved,
		CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func mapToListResponse(users []User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp
}
