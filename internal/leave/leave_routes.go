package leave

import (
	"leavedesk/internal/middleware"
	"leavedesk/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	employee := r.Group("/employee/leave-requests")
	employee.Use(middleware.AuthMiddleware())
	{
		employee.POST("", middleware.Idempotency(rdb), handler.Submit)
		employee.GET("", handler.GetMine)
	}

	admin := r.Group("/admin/leave-requests")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(user.RoleAdmin))
	{
		admin.GET("", handler.GetAll)
		admin.PUT("/:id", handler.Resolve)
	}
}
