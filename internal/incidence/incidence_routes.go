package incidence

import (
	"go-asistencia/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService) {
	incidences := r.Group("/incidences")
	incidences.Use(middleware.AuthMiddleware())
	{
		incidences.GET("", middleware.RBACAuthorize(rbacService, "incidence", "read"), h.GetAll)
		incidences.GET("/:id", middleware.RBACAuthorize(rbacService, "incidence", "read"), h.GetByID)
		incidences.POST("", middleware.RBACAuthorize(rbacService, "incidence", "create"), h.Create)
		incidences.PUT("/:id", middleware.RBACAuthorize(rbacService, "incidence", "update"), h.Update)
		incidences.POST("/:id/authorize", middleware.RBACAuthorize(rbacService, "incidence", "authorize"), h.Authorize)
		incidences.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "incidence", "authorize"), h.Reject)
	}

	types := r.Group("/incidence-types")
	types.Use(middleware.AuthMiddleware())
	{
		types.GET("", middleware.RBACAuthorize(rbacService, "incidence", "read"), h.GetTypes)
		types.POST("", middleware.RBACAuthorize(rbacService, "incidence", "create"), h.CreateType)
	}
}
