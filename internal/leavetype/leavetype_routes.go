package leavetype

import (
	"leavedesk/internal/middleware"
	"leavedesk/internal/user"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	types := r.Group("/admin/leave-types")
	types.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(user.RoleAdmin))
	{
		types.POST("", handler.Create)
		types.GET("", handler.GetAll)
		types.PUT("/:id/allocation", handler.UpdateAllocation)
		types.POST("/setup-defaults", handler.SetupDefaults)
	}
}
