package auth

import (
	"go-asistencia/internal/domain"
	"go-asistencia/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitByIP(0.08, 5), handler.Login)
		auth.POST("/refresh", handler.RefreshToken)
		auth.POST("/register", middleware.RateLimitByIP(0.1, 3), handler.Register)
		auth.GET("/me", middleware.AuthMiddleware(), middleware.RateLimitByUser(2, 5), handler.Me)
		auth.POST("/logout", middleware.AuthMiddleware(), handler.Logout)
		auth.PUT("/users/:id/role",
			middleware.AuthMiddleware(),
			middleware.RoleMiddleware(domain.RoleAdmin),
			handler.SetRole,
		)
	}
}
