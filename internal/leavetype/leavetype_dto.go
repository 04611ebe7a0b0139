package leavetype

type CreateLeaveTypeRequest struct {
	Name              string `json:"name" binding:"required,max=100"`
	Description       string `json:"description"`
	DefaultAllocation *int   `json:"default_allocation" binding:"omitempty,min=0"`
	RequiresBalance   *bool  `json:"requires_balance"`
}

type UpdateAllocationRequest struct {
	DefaultAllocation *int `json:"default_allocation" binding:"required,min=0"`
}

type LeaveTypeResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	DefaultAllocation *int   `json:"default_allocation"`
	RequiresBalance   bool   `json:"requires_balance"`
	CreatedAt         string `json:"created_at"`
}
