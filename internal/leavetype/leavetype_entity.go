package leavetype

import (
	"time"

	"github.com/google/uuid"
)

// LeaveType is a category of absence. Types with RequiresBalance=false
// (sick, maternity) are not balance-governed: requests against them skip
// the ledger entirely and their allocation is not editable.
type LeaveType struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name              string    `gorm:"column:name;type:varchar(100);not null;uniqueIndex:uq_leave_types_name"`
	Description       string    `gorm:"column:description;type:text"`
	DefaultAllocation *int      `gorm:"column:default_allocation"`
	RequiresBalance   bool      `gorm:"column:requires_balance;not null;default:true"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
