package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// LeaveRequest is one employee's request for a date range of absence.
// It is born pending and resolved exactly once: approval deducts from the
// balance ledger, rejection touches nothing but the status.
type LeaveRequest struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_leave_requests_user"`
	LeaveTypeID uuid.UUID `gorm:"column:leave_type_id;type:uuid;not null"`
	StartDate   time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate     time.Time `gorm:"column:end_date;type:date;not null"`
	Status      string    `gorm:"column:status;type:varchar(20);not null;default:'pending';index:idx_leave_requests_status"`
	Reason      string    `gorm:"column:reason;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`

	LeaveType *RequestLeaveType `gorm:"foreignKey:LeaveTypeID;references:ID"`
	User      *RequestUser      `gorm:"foreignKey:UserID;references:ID"`
}

// Days is the inclusive span of the request in whole days
func (lr *LeaveRequest) Days() int {
	return int(lr.EndDate.Sub(lr.StartDate).Hours()/24) + 1
}

// RequestLeaveType joins the minimal leave type data needed in responses
type RequestLeaveType struct {
	ID              uuid.UUID `gorm:"primaryKey"`
	Name            string    `gorm:"column:name"`
	RequiresBalance bool      `gorm:"column:requires_balance"`
}

func (RequestLeaveType) TableName() string {
	return "leave_types"
}

// RequestUser joins the minimal requester data needed in admin listings
type RequestUser struct {
	ID       uuid.UUID `gorm:"primaryKey"`
	Username string    `gorm:"column:username"`
	Email    string    `gorm:"column:email"`
}

func (RequestUser) TableName() string {
	return "users"
}
