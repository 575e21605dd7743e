// internal/handlers/permission/permission_handler.go
package permission

import (
	"net/http"

	"auth-service/internal/middleware"
	"auth-service/internal/pkg/response"
	permUsecase "auth-service/internal/service/permission"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	permissionService *permUsecase.PermissionService
}

func NewPermissionHandler(permissionService *permUsecase.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// GetMyPermissions lists the caller's permission codes (requires auth)
func (h *PermissionHandler) GetMyPermissions(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	codes, err := h.permissionService.GetPermissionsByUserID(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if codes == nil {
		codes = []string{}
	}

	response.Success(c, http.StatusOK, "permissions", codes)
}
