package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User is an account. Accounts start unapproved and cannot authenticate
// until an admin approves them. They are never hard-deleted.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"column:username;type:varchar(100);not null;uniqueIndex:uq_users_username"`
	Email        string    `gorm:"column:email;type:text;not null;uniqueIndex:uq_users_email"`
	PasswordHash string    `gorm:"column:password_hash;type:text;not null"`
	Role         string    `gorm:"column:role;type:varchar(20);not null;default:'employee'"`
	IsApproved   bool      `gorm:"column:is_approved;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
