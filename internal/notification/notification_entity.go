package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message for a single user, created when an
// admin resolves one of their leave requests.
type Notification struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_notifications_user"`
	Message   string    `gorm:"column:message;type:text;not null"`
	IsRead    bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
