package unit

import (
	"go-asistencia/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService) {
	units := r.Group("/units")
	units.Use(middleware.AuthMiddleware())
	{
		units.GET("", middleware.RBACAuthorize(rbacService, "unit", "read"), h.GetAll)
		units.GET("/:id", middleware.RBACAuthorize(rbacService, "unit", "read"), h.GetByID)
		units.POST("", middleware.RBACAuthorize(rbacService, "unit", "create"), h.Create)
		units.PUT("/:id", middleware.RBACAuthorize(rbacService, "unit", "update"), h.Update)
		units.DELETE("/:id", middleware.RBACAuthorize(rbacService, "unit", "delete"), h.Delete)
	}
}
