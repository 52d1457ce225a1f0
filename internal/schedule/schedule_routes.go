package schedule

import (
	"go-asistencia/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService) {
	shifts := r.Group("/shifts")
	shifts.Use(middleware.AuthMiddleware())
	{
		shifts.GET("", middleware.RBACAuthorize(rbacService, "schedule", "read"), h.GetShifts)
		shifts.GET("/:id", middleware.RBACAuthorize(rbacService, "schedule", "read"), h.GetShiftByID)
		shifts.POST("", middleware.RBACAuthorize(rbacService, "schedule", "create"), h.CreateShift)
		shifts.PUT("/:id", middleware.RBACAuthorize(rbacService, "schedule", "update"), h.UpdateShift)
		shifts.DELETE("/:id", middleware.RBACAuthorize(rbacService, "schedule", "delete"), h.DeleteShift)
	}

	calendar := r.Group("/calendar-days")
	calendar.Use(middleware.AuthMiddleware())
	{
		calendar.GET("", middleware.RBACAuthorize(rbacService, "calendar", "read"), h.GetCalendarDays)
		calendar.POST("", middleware.RBACAuthorize(rbacService, "calendar", "create"), h.CreateCalendarDay)
		calendar.DELETE("/:id", middleware.RBACAuthorize(rbacService, "calendar", "delete"), h.DeleteCalendarDay)
	}

	assignments := r.Group("/assignments")
	assignments.Use(middleware.AuthMiddleware())
	{
		assignments.GET("/worker/:worker_id", middleware.RBACAuthorize(rbacService, "schedule", "read"), h.GetAssignmentsByWorker)
		assignments.POST("", middleware.RBACAuthorize(rbacService, "schedule", "create"), h.CreateAssignment)
		assignments.PUT("/:id", middleware.RBACAuthorize(rbacService, "schedule", "update"), h.UpdateAssignment)
		assignments.DELETE("/:id", middleware.RBACAuthorize(rbacService, "schedule", "delete"), h.DeleteAssignment)
	}
}
