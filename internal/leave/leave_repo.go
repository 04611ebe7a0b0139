package leave

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, lr *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)

	// FindAllByUser returns the user's requests, newest first. An empty
	// status means no status filter.
	FindAllByUser(ctx context.Context, userID, status string) ([]LeaveRequest, error)

	// FindAll returns every request, newest first. An empty status means
	// no status filter.
	FindAll(ctx context.Context, status string) ([]LeaveRequest, error)

	Update(ctx context.Context, lr *LeaveRequest) error
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

func (r *repository) Create(ctx context.Context, lr *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(lr).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var lr LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("id = ?", id).
		First(&lr).Error
	return &lr, err
}

func (r *repository) FindAllByUser(ctx context.Context, userID, status string) ([]LeaveRequest, error) {
	q := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var requests []LeaveRequest
	err := q.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *repository) FindAll(ctx context.Context, status string) ([]LeaveRequest, error) {
	q := r.db.WithContext(ctx).
		Preload("LeaveType").
		Preload("User")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var requests []LeaveRequest
	err := q.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *repository) Update(ctx context.Context, lr *LeaveRequest) error {
	return r.db.WithContext(ctx).Save(lr).Error
}
