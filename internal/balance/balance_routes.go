package balance

import (
	"leavedesk/internal/middleware"
	"leavedesk/internal/user"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	admin := r.Group("/admin/leave-balances")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(user.RoleAdmin))
	{
		admin.POST("", handler.Set)
	}

	employee := r.Group("/employee/leave-balances")
	employee.Use(middleware.AuthMiddleware())
	{
		employee.GET("", handler.GetMine)
	}
}
