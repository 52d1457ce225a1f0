package attendance

import (
	"go-asistencia/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService, rdb *redis.Client) {
	records := r.Group("/attendance")
	records.Use(middleware.AuthMiddleware())
	{
		records.GET("", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetAll)
		records.GET("/worker/:worker_id", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetByWorker)
		records.GET("/me", h.GetMine)
		records.POST("", middleware.RBACAuthorize(rbacService, "attendance", "create"), h.Create)
		records.PUT("/:id", middleware.RBACAuthorize(rbacService, "attendance", "update"), h.Update)

		// Clock is idempotency-protected: a double-tap with the same
		// key replays the first response instead of flipping entry
		// into exit.
		records.POST("/clock", middleware.Idempotency(rdb), h.Clock)
	}
}
