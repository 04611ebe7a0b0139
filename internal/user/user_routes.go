package user

import (
	"leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	users := r.Group("/admin/users")
	users.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(RoleAdmin))
	{
		users.GET("", handler.GetAll)
		users.GET("/pending", handler.GetPending)
		users.POST("/:id/approve", handler.Approve)
	}
}
