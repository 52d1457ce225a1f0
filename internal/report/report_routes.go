package report

import (
	"go-asistencia/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService) {
	reports := r.Group("/reports")
	reports.Use(middleware.AuthMiddleware())
	{
		reports.GET("/summary", middleware.RBACAuthorize(rbacService, "report", "read"), h.GetSummary)
		reports.GET("/export", middleware.RBACAuthorize(rbacService, "report", "export"), h.ExportCSV)
		reports.GET("/export/unit", middleware.RBACAuthorize(rbacService, "report", "export"), h.ExportUnitCSV)
	}
}
