package balance

type SetBalanceRequest struct {
	UserID      string `json:"user_id" binding:"required,uuid"`
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	Balance     *int   `json:"balance" binding:"required,min=0"`
}

type BalanceResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	LeaveTypeID   string `json:"leave_type_id"`
	LeaveTypeName string `json:"leave_type_name,omitempty"`
	Balance       int    `json:"balance"`
	UpdatedAt     string `json:"updated_at"`
}
