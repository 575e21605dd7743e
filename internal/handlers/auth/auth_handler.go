// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"auth-service/internal/domain/auth"
	"auth-service/internal/middleware"
	"auth-service/internal/pkg/response"
	authUsecase "auth-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("username", req.Username),
			zap.String("ip", c.ClientIP()),
		)
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", tokens)
}

// RefreshToken exchanges a refresh token for a new pair
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	tokens, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "token refreshed", tokens)
}

// Logout ends the caller's session (requires auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	rawToken := middleware.GetRawToken(c)

	if err := h.authService.Logout(c.Request.Context(), rawToken, userID); err != nil {
		h.logger.Error("logout failed", zap.String("user_id", userID), zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// ForceLogoutAll invalidates every session of the caller (requires auth)
func (h *AuthHandler) ForceLogoutAll(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.authService.ForceLogoutAllForCurrentUser(c.Request.Context(), userID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "all sessions logged out", nil)
}
