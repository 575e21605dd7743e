// internal/app/router.go
package app

import (
	authHandler "auth-service/internal/handlers/auth"
	permHandler "auth-service/internal/handlers/permission"
	"auth-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler       *authHandler.AuthHandler
	PermissionHandler *permHandler.PermissionHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
		authPublic.POST("/refresh-token", h.AuthHandler.RefreshToken)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.POST("/force-logout-all", h.AuthHandler.ForceLogoutAll)
	}

	// ==================== Permissions ====================
	permissions := api.Group("/permissions")
	permissions.Use(h.AuthMiddleware.Auth())
	{
		permissions.GET("/me", h.PermissionHandler.GetMyPermissions)
	}
}
