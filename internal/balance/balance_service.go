package balance

import (
	"context"
	"errors"

	balanceerrors "leavedesk/internal/balance/errors"
	"leavedesk/internal/leavetype"
	leavetypeerrors "leavedesk/internal/leavetype/errors"
	"leavedesk/internal/user"
	usererrors "leavedesk/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	// Set is the admin upsert: creates the (user, leave type) row on first
	// use, overwrites the balance afterwards.
	Set(ctx context.Context, req SetBalanceRequest) (BalanceResponse, error)

	GetAllForUser(ctx context.Context, userID string) ([]BalanceResponse, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	userRepo user.Repository
	typeRepo leavetype.Repository
	logger   *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	userRepo user.Repository,
	typeRepo leavetype.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, userRepo: userRepo, typeRepo: typeRepo, logger: l}
}

func (s *service) Set(ctx context.Context, req SetBalanceRequest) (BalanceResponse, error) {
	s.logger.Debug("set balance requested",
		zap.String("user_id", req.UserID),
		zap.String("leave_type_id", req.LeaveTypeID),
	)

	userUUID, err := uuid.Parse(req.UserID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidUserID
	}
	typeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidLeaveTypeID
	}
	if req.Balance == nil || *req.Balance < 0 {
		return BalanceResponse{}, balanceerrors.ErrNegativeBalance
	}

	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, usererrors.ErrUserNotFound
		}
		return BalanceResponse{}, err
	}
	if _, err := s.typeRepo.FindByID(ctx, req.LeaveTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return BalanceResponse{}, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("set balance begin tx failed", zap.Error(tx.Error))
		return BalanceResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b, err := qtx.FindByUserAndType(ctx, req.UserID, req.LeaveTypeID)
	switch {
	case err == nil:
		b.Balance = *req.Balance
		if err := qtx.Update(ctx, b); err != nil {
			s.logger.Error("set balance update failed", zap.Error(err))
			return BalanceResponse{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		b = &LeaveBalance{
			ID:          uuid.New(),
			UserID:      userUUID,
			LeaveTypeID: typeUUID,
			Balance:     *req.Balance,
		}
		if err := qtx.Create(ctx, b); err != nil {
			s.logger.Error("set balance create failed", zap.Error(err))
			return BalanceResponse{}, err
		}
	default:
		s.logger.Error("set balance lookup failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("set balance commit failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	s.logger.Info("set balance success",
		zap.String("user_id", req.UserID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.Int("balance", *req.Balance),
	)

	return mapToResponse(*b), nil
}

func (s *service) GetAllForUser(ctx context.Context, userID string) ([]BalanceResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, balanceerrors.ErrInvalidUserID
	}

	balances, err := s.repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return mapToListResponse(balances), nil
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	resp := BalanceResponse{
		ID:          b.ID.String(),
		UserID:      b.UserID.String(),
		LeaveTypeID: b.LeaveTypeID.String(),
		Balance:     b.Balance,
		UpdatedAt:   b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if b.LeaveType != nil {
		resp.LeaveTypeName = b.LeaveType.Name
	}
	return resp
}

func mapToListResponse(balances []LeaveBalance) []BalanceResponse {
	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToResponse(b)
	}
	return resp
}
