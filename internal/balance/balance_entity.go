package balance

import (
	"time"

	"github.com/google/uuid"
)

// LeaveBalance is the remaining entitlement in days for one (user, leave
// type) pair. Never negative: decrements are guarded inside the approval
// transaction.
type LeaveBalance struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_leave_balances_user_type"`
	LeaveTypeID uuid.UUID `gorm:"column:leave_type_id;type:uuid;not null;uniqueIndex:uq_leave_balances_user_type"`
	Balance     int       `gorm:"column:balance;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`

	LeaveType *BalanceLeaveType `gorm:"foreignKey:LeaveTypeID;references:ID"`
}

// BalanceLeaveType joins the minimal leave type data needed in responses
type BalanceLeaveType struct {
	ID   uuid.UUID `gorm:"primaryKey"`
	Name string    `gorm:"column:name"`
}

func (BalanceLeaveType) TableName() string {
	return "leave_types"
}
