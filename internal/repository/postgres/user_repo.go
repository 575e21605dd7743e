// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auth-service/internal/domain/auth"
	xerrors "auth-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername retrieves a user and their role ids for claim building.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password, u.account_type,
		       COALESCE(array_agg(ur.role_id) FILTER (WHERE ur.role_id IS NOT NULL), '{}'),
		       u.created_at, u.updated_at
		FROM auth_users u
		LEFT JOIN auth_user_roles ur ON ur.user_id = u.id
		WHERE u.username = $1
		GROUP BY u.id
	`

	var user auth.User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.AccountType,
		&user.RoleIDs, &user.CreatedAt, &user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// GetPermissionsByUserID returns the distinct permission codes granted to a
// user through their active role assignments.
func (r *UserRepository) GetPermissionsByUserID(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT DISTINCT p.code
		FROM auth_user_roles ur
		JOIN auth_role_permissions rp ON rp.role_id = ur.role_id AND rp.is_active = TRUE
		JOIN auth_permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1 AND p.code IS NOT NULL
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}

// UserHasPermission checks a single permission code, case-insensitively.
func (r *UserRepository) UserHasPermission(ctx context.Context, userID int64, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM auth_user_roles ur
			JOIN auth_role_permissions rp ON rp.role_id = ur.role_id AND rp.is_active = TRUE
			JOIN auth_permissions p ON p.id = rp.permission_id
			WHERE ur.user_id = $1 AND p.code ILIKE $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}

	return exists, nil
}
