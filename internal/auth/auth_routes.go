package auth

import (
	"leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	authGroup := r.Group("/auth")
	{
		// anonymous surface, rate limited against brute force
		authGroup.POST("/register", middleware.RateLimitByIP(1, 5), handler.Register)
		authGroup.POST("/register/admin", middleware.RateLimitByIP(1, 5), handler.RegisterAdmin)
		authGroup.POST("/login", middleware.RateLimitByIP(2, 10), handler.Login)

		authGroup.GET("/me", middleware.AuthMiddleware(), handler.Me)
	}
}
