package rbac

import (
	"go-asistencia/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, svc Service) {
	perms := r.Group("/permissions")
	perms.Use(middleware.AuthMiddleware())
	{
		perms.GET("", middleware.RBACAuthorize(svc, "rbac", "read"), h.ListPermissions)
		perms.POST("", middleware.RBACAuthorize(svc, "rbac", "update"), h.Grant)
		perms.DELETE("", middleware.RBACAuthorize(svc, "rbac", "update"), h.Revoke)
	}
}
