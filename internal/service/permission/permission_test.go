package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePermStore struct {
	perms map[int64][]string
}

func (f *fakePermStore) GetPermissionsByUserID(_ context.Context, userID int64) ([]string, error) {
	return f.perms[userID], nil
}

func (f *fakePermStore) UserHasPermission(_ context.Context, userID int64, code string) (bool, error) {
	for _, p := range f.perms[userID] {
		if p == code {
			return true, nil
		}
	}
	return false, nil
}

func TestGetPermissionsByUserID(t *testing.T) {
	svc := NewPermissionService(&fakePermStore{perms: map[int64][]string{
		7: {"admin.read", "admin.write"},
	}})

	perms, err := svc.GetPermissionsByUserID(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin.read", "admin.write"}, perms)

	perms, err = svc.GetPermissionsByUserID(context.Background(), "not-numeric")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestUserHasPermission(t *testing.T) {
	svc := NewPermissionService(&fakePermStore{perms: map[int64][]string{
		7: {"admin.read"},
	}})
	ctx := context.Background()

	ok, err := svc.UserHasPermission(ctx, "7", "admin.read")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.UserHasPermission(ctx, "7", "admin.write")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.UserHasPermission(ctx, "abc", "admin.read")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.UserHasPermission(ctx, "7", "")
	require.NoError(t, err)
	assert.False(t, ok)
}
