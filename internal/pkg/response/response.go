// internal/pkg/response/response.go
package response

import (
	"net/http"

	xerrors "auth-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error) {
	// Abort FIRST before writing response
	c.Abort()

	response := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(code, response)
}

// FromError maps application sentinel errors to HTTP responses. Only the
// sentinel message reaches the client; wrapped detail stays server side.
func FromError(c *gin.Context, err error) {
	switch {
	case xerrors.Is(err, xerrors.ErrInvalidCredentials):
		Error(c, http.StatusUnauthorized, "login failed", xerrors.ErrInvalidCredentials)
	case xerrors.Is(err, xerrors.ErrInvalidToken):
		Error(c, http.StatusUnauthorized, "invalid or expired token", xerrors.ErrInvalidToken)
	case xerrors.Is(err, xerrors.ErrSessionNotFound):
		Error(c, http.StatusUnauthorized, "session not found", xerrors.ErrSessionNotFound)
	case xerrors.Is(err, xerrors.ErrUnauthorized):
		Error(c, http.StatusUnauthorized, "unauthorized", xerrors.ErrUnauthorized)
	case xerrors.Is(err, xerrors.ErrForbidden):
		Error(c, http.StatusForbidden, "forbidden", xerrors.ErrForbidden)
	case xerrors.Is(err, xerrors.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", xerrors.ErrNotFound)
	case xerrors.Is(err, xerrors.ErrInvalidInput):
		Error(c, http.StatusBadRequest, "invalid input", xerrors.ErrInvalidInput)
	default:
		Error(c, http.StatusInternalServerError, "internal server error", xerrors.ErrInternal)
	}
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}
