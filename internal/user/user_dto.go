package user

type UserResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsApproved bool   `json:"is_approved"`
	CreatedAt  string `json:"created_at"`
}

// ApproveUserResponse reports whether the approve was a no-op. Re-approving
// an already-approved account is not an error, but the caller is told.
type ApproveUserResponse struct {
	User            UserResponse `json:"user"`
	AlreadyApproved bool         `json:"already_approved"`
}
