package auth

import "leavedesk/internal/user"

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterResponse struct {
	Message string            `json:"message"`
	User    user.UserResponse `json:"user"`
}

type LoginResponse struct {
	AccessToken string            `json:"access_token"`
	User        user.UserResponse `json:"user"`
}
