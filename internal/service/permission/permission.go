// internal/service/permission/permission.go
package permission

import (
	"context"
	"strconv"
)

// Store is the role/permission lookup backing the service; the postgres
// UserRepository implements it.
type Store interface {
	GetPermissionsByUserID(ctx context.Context, userID int64) ([]string, error)
	UserHasPermission(ctx context.Context, userID int64, code string) (bool, error)
}

// PermissionService answers capability checks for other components. It is a
// sibling collaborator of the session subsystem, not part of its core.
type PermissionService struct {
	store Store
}

func NewPermissionService(store Store) *PermissionService {
	return &PermissionService{store: store}
}

// GetPermissionsByUserID returns the permission codes for a user id. A
// non-numeric id yields an empty set, not an error.
func (s *PermissionService) GetPermissionsByUserID(ctx context.Context, userID string) ([]string, error) {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, nil
	}
	return s.store.GetPermissionsByUserID(ctx, uid)
}

// UserHasPermission checks one permission code for a user id.
func (s *PermissionService) UserHasPermission(ctx context.Context, userID, code string) (bool, error) {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil || code == "" {
		return false, nil
	}
	return s.store.UserHasPermission(ctx, uid, code)
}
