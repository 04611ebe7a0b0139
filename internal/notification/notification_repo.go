package notification

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, n *Notification) error
	FindUnreadByUser(ctx context.Context, userID string) ([]Notification, error)
	FindByIDAndUser(ctx context.Context, id, userID string) (*Notification, error)
	Update(ctx context.Context, n *Notification) error
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

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) FindUnreadByUser(ctx context.Context, userID string) ([]Notification, error) {
	var notifications []Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("is_read = ?", false).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *repository) FindByIDAndUser(ctx context.Context, id, userID string) (*Notification, error) {
	var n Notification
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		First(&n).Error
	return &n, err
}

func (r *repository) Update(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Save(n).Error
}
