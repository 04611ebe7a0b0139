package balance

import (
	"context"

	balanceerrors "leavedesk/internal/balance/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, b *LeaveBalance) error
	FindByUserAndType(ctx context.Context, userID, leaveTypeID string) (*LeaveBalance, error)

	// FindForUpdate takes a row lock so check-and-decrement cannot
	// interleave across connections. Only meaningful inside a transaction.
	FindForUpdate(ctx context.Context, userID, leaveTypeID string) (*LeaveBalance, error)

	FindAllByUser(ctx context.Context, userID string) ([]LeaveBalance, error)
	Update(ctx context.Context, b *LeaveBalance) error

	// Decrement subtracts amount, guarded in SQL so the balance can never
	// go negative even if the caller's read was stale.
	Decrement(ctx context.Context, userID, leaveTypeID string, amount int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindByUserAndType(ctx context.Context, userID, leaveTypeID string) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("leave_type_id = ?", leaveTypeID).
		First(&b).Error
	return &b, err
}

func (r *repository) FindForUpdate(ctx context.Context, userID, leaveTypeID string) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Where("leave_type_id = ?", leaveTypeID).
		First(&b).Error
	return &b, err
}

func (r *repository) FindAllByUser(ctx context.Context, userID string) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("user_id = ?", userID).
		Find(&balances).Error
	return balances, err
}

func (r *repository) Update(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *repository) Decrement(ctx context.Context, userID, leaveTypeID string, amount int) error {
	res := r.db.WithContext(ctx).
		Model(&LeaveBalance{}).
		Where("user_id = ?", userID).
		Where("leave_type_id = ?", leaveTypeID).
		Where("balance >= ?", amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return balanceerrors.ErrInsufficientBalance
	}
	return nil
}
