// internal/domain/auth/entity.go
package auth

import "time"

// User is the identity consulted at login. It is a collaborator of the
// session subsystem; user CRUD lives elsewhere.
type User struct {
	ID          int64     `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	Password    string    `json:"-" db:"password"` // bcrypt hash
	AccountType string    `json:"account_type" db:"account_type"`
	RoleIDs     []int64   `json:"role_ids" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Session is the durable record of one active login. The sid is mirrored from
// the refresh token's claims so lookups never need to parse the token.
//
// At most one row with IsValid=true exists per sid. Invalidation deletes the
// row outright; IsValid=false is never persisted.
type Session struct {
	ID        int64      `json:"id" db:"id"`
	SessionID string     `json:"session_id" db:"session_id"`
	Token     string     `json:"-" db:"token"`
	UserID    string     `json:"user_id" db:"user_id"`
	IsValid   bool       `json:"is_valid" db:"is_valid"`
	ExpiresAt *time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the session's refresh token expiry has passed.
// A session without a recorded expiry never expires by time.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}
