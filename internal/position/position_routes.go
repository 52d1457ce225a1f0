package position

import (
	"go-asistencia/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService) {
	positions := r.Group("/positions")
	positions.Use(middleware.AuthMiddleware())
	{
		positions.GET("", middleware.RBACAuthorize(rbacService, "position", "read"), h.GetAll)
		positions.GET("/options", middleware.RBACAuthorize(rbacService, "position", "read"), h.GetOptions)
		positions.GET("/:id", middleware.RBACAuthorize(rbacService, "position", "read"), h.GetByID)
		positions.POST("", middleware.RBACAuthorize(rbacService, "position", "create"), h.Create)
		positions.PUT("/:id", middleware.RBACAuthorize(rbacService, "position", "update"), h.Update)
		positions.DELETE("/:id", middleware.RBACAuthorize(rbacService, "position", "delete"), h.Delete)
	}
}
