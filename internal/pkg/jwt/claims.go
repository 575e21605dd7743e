// internal/pkg/jwt/claims.go
package jwt

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes carried in the session_purpose claim.
const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
)

// Identity is the claim set handed to the generator. It is the only channel
// by which identity crosses the token boundary.
type Identity struct {
	UserID      string
	Username    string
	Email       string
	AccountType string
	RoleIDs     []int64
	SessionID   string
}

// Claims represents the JWT claims
type Claims struct {
	Username       string  `json:"username,omitempty"`
	Email          string  `json:"email,omitempty"`
	AccountType    string  `json:"account_type,omitempty"`
	RoleIDs        []int64 `json:"roles,omitempty"`
	SessionID      string  `json:"sid,omitempty"`
	SessionPurpose string  `json:"session_purpose"` // access, refresh
	jwt.RegisteredClaims
}

// Identity rebuilds the generator input from validated claims, preserving the
// sid so that a rotation re-mints tokens for the same session.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:      c.Subject,
		Username:    c.Username,
		Email:       c.Email,
		AccountType: c.AccountType,
		RoleIDs:     c.RoleIDs,
		SessionID:   c.SessionID,
	}
}

// HasRole checks if the claims contain a specific role id
func (c *Claims) HasRole(roleID int64) bool {
	for _, r := range c.RoleIDs {
		if r == roleID {
			return true
		}
	}
	return false
}

// UserIDInt parses the subject as a numeric user id, 0 when not numeric.
func (c *Claims) UserIDInt() int64 {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		// If audience is required but missing
		return !required
	}

	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}

	return false
}
