package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leavedesk/internal/balance"
	balanceerrors "leavedesk/internal/balance/errors"
	leaveerrors "leavedesk/internal/leave/errors"
	"leavedesk/internal/leavetype"
	leavetypeerrors "leavedesk/internal/leavetype/errors"
	"leavedesk/internal/mailer"
	"leavedesk/internal/notification"
	"leavedesk/internal/shared/apperror"
	"leavedesk/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Service interface {
	// Submit files a new pending request for the given user. For
	// balance-governed leave types the user's balance is pre-checked, but
	// nothing is deducted until approval.
	Submit(ctx context.Context, userID string, req SubmitLeaveRequest) (LeaveRequestResponse, error)

	GetAllForUser(ctx context.Context, userID, status string) ([]LeaveRequestResponse, error)
	GetAll(ctx context.Context, status string) ([]LeaveRequestResponse, error)

	// Resolve approves or rejects a pending request. Approval re-checks
	// and deducts the balance under a row lock; rejection never touches
	// the ledger. Either way the requester gets an in-app notification in
	// the same transaction.
	Resolve(ctx context.Context, requestID string, req ResolveLeaveRequest) (ResolveLeaveResponse, error)
}

type service struct {
	db          *gorm.DB
	repo        Repository
	typeRepo    leavetype.Repository
	balanceRepo balance.Repository
	notifRepo   notification.Repository
	userRepo    user.Repository
	mail        mailer.Sender
	logger      *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	typeRepo leavetype.Repository,
	balanceRepo balance.Repository,
	notifRepo notification.Repository,
	userRepo user.Repository,
	mail mailer.Sender,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		typeRepo:    typeRepo,
		balanceRepo: balanceRepo,
		notifRepo:   notifRepo,
		userRepo:    userRepo,
		mail:        mail,
		logger:      l,
	}
}

func (s *service) Submit(ctx context.Context, userID string, req SubmitLeaveRequest) (LeaveRequestResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return LeaveRequestResponse{}, apperror.ErrUnauthorized
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return LeaveRequestResponse{}, leaveerrors.ErrEndBeforeStart
	}

	lt, err := s.typeRepo.FindByID(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		s.logger.Error("submit leave type lookup failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	days := int(end.Sub(start).Hours()/24) + 1

	// Pre-check so obviously unaffordable requests fail fast. The
	// authoritative check happens again at approval, under a row lock.
	if lt.RequiresBalance {
		b, err := s.balanceRepo.FindByUserAndType(ctx, userID, req.LeaveTypeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return LeaveRequestResponse{}, balanceerrors.ErrNoBalanceRecord
			}
			s.logger.Error("submit balance lookup failed", zap.Error(err))
			return LeaveRequestResponse{}, err
		}
		if b.Balance < days {
			return LeaveRequestResponse{}, balanceerrors.ErrInsufficientBalance
		}
	}

	lr := &LeaveRequest{
		ID:          uuid.New(),
		UserID:      userUUID,
		LeaveTypeID: lt.ID,
		StartDate:   start,
		EndDate:     end,
		Status:      StatusPending,
		Reason:      req.Reason,
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("submit leave begin tx failed", zap.Error(tx.Error))
		return LeaveRequestResponse{}, tx.Error
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, lr); err != nil {
		s.logger.Error("submit leave create failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("submit leave commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("leave request submitted",
		zap.String("request_id", lr.ID.String()),
		zap.String("user_id", userID),
		zap.String("leave_type", lt.Name),
		zap.Int("days", days),
	)

	resp := mapToResponse(*lr)
	resp.LeaveTypeName = lt.Name
	return resp, nil
}

func (s *service) GetAllForUser(ctx context.Context, userID, status string) ([]LeaveRequestResponse, error) {
	if status != "" && !validStatusFilter(status) {
		return nil, apperror.InvalidField("status")
	}

	requests, err := s.repo.FindAllByUser(ctx, userID, status)
	if err != nil {
		s.logger.Error("list user leave requests failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetAll(ctx context.Context, status string) ([]LeaveRequestResponse, error) {
	if status != "" && !validStatusFilter(status) {
		return nil, apperror.InvalidField("status")
	}

	requests, err := s.repo.FindAll(ctx, status)
	if err != nil {
		s.logger.Error("list leave requests failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) Resolve(ctx context.Context, requestID string, req ResolveLeaveRequest) (ResolveLeaveResponse, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return ResolveLeaveResponse{}, leaveerrors.ErrInvalidRequestID
	}
	if req.Status != StatusApproved && req.Status != StatusRejected {
		return ResolveLeaveResponse{}, leaveerrors.ErrInvalidStatus
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("resolve leave begin tx failed", zap.Error(tx.Error))
		return ResolveLeaveResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lr, err := qtx.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ResolveLeaveResponse{}, leaveerrors.ErrRequestNotFound
		}
		s.logger.Error("resolve leave lookup failed", zap.Error(err))
		return ResolveLeaveResponse{}, err
	}

	if lr.Status != StatusPending {
		return ResolveLeaveResponse{}, leaveerrors.ErrAlreadyResolved
	}

	days := lr.Days()

	if req.Status == StatusApproved && lr.LeaveType != nil && lr.LeaveType.RequiresBalance {
		balanceQtx := s.balanceRepo.WithTx(tx)

		b, err := balanceQtx.FindForUpdate(ctx, lr.UserID.String(), lr.LeaveTypeID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ResolveLeaveResponse{}, balanceerrors.ErrNoBalanceRecord
			}
			s.logger.Error("resolve balance lock failed", zap.Error(err))
			return ResolveLeaveResponse{}, err
		}
		if b.Balance < days {
			return ResolveLeaveResponse{}, balanceerrors.ErrInsufficientBalance
		}

		if err := balanceQtx.Decrement(ctx, lr.UserID.String(), lr.LeaveTypeID.String(), days); err != nil {
			s.logger.Error("resolve balance decrement failed", zap.Error(err))
			return ResolveLeaveResponse{}, err
		}
	}

	lr.Status = req.Status
	if err := qtx.Update(ctx, lr); err != nil {
		s.logger.Error("resolve leave update failed", zap.Error(err))
		return ResolveLeaveResponse{}, err
	}

	message := fmt.Sprintf(
		"Your leave request for %s to %s has been %s.",
		lr.StartDate.Format(dateLayout),
		lr.EndDate.Format(dateLayout),
		req.Status,
	)

	n := &notification.Notification{
		ID:      uuid.New(),
		UserID:  lr.UserID,
		Message: message,
	}
	if err := s.notifRepo.WithTx(tx).Create(ctx, n); err != nil {
		s.logger.Error("resolve notification create failed", zap.Error(err))
		return ResolveLeaveResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("resolve leave commit failed", zap.Error(err))
		return ResolveLeaveResponse{}, err
	}

	s.logger.Info("leave request resolved",
		zap.String("request_id", requestID),
		zap.String("status", req.Status),
		zap.Int("days", days),
	)

	s.notifyRequester(ctx, lr, message)

	return ResolveLeaveResponse{
		Message: fmt.Sprintf("Leave request %s", req.Status),
		Request: mapToResponse(*lr),
	}, nil
}

// notifyRequester sends the resolution email after commit. Failures are
// logged and swallowed: the resolution already happened.
func (s *service) notifyRequester(ctx context.Context, lr *LeaveRequest, message string) {
	u, err := s.userRepo.FindByID(ctx, lr.UserID.String())
	if err != nil {
		s.logger.Warn("resolve email user lookup failed",
			zap.String("user_id", lr.UserID.String()),
			zap.Error(err),
		)
		return
	}

	if err := s.mail.Send(u.Email, "Leave Request Update", message); err != nil {
		s.logger.Warn("resolve email send failed",
			zap.String("email", u.Email),
			zap.Error(err),
		)
	}
}

func validStatusFilter(status string) bool {
	return status == StatusPending || status == StatusApproved || status == StatusRejected
}

func mapToResponse(lr LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:          lr.ID.String(),
		UserID:      lr.UserID.String(),
		LeaveTypeID: lr.LeaveTypeID.String(),
		StartDate:   lr.StartDate.Format(dateLayout),
		EndDate:     lr.EndDate.Format(dateLayout),
		Days:        lr.Days(),
		Status:      lr.Status,
		Reason:      lr.Reason,
		CreatedAt:   lr.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   lr.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if lr.LeaveType != nil {
		resp.LeaveTypeName = lr.LeaveType.Name
	}
	if lr.User != nil {
		resp.Username = lr.User.Username
	}
	return resp
}

func mapToListResponse(requests []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(requests))
	for i, lr := range requests {
		resp[i] = mapToResponse(lr)
	}
	return resp
}
