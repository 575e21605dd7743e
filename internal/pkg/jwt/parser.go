// internal/pkg/jwt/parser.go
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionInfo is what a session record needs out of a refresh token:
// the sid claim and the token's own expiry.
type SessionInfo struct {
	SessionID string
	ExpiresAt time.Time
}

// ParseSessionInfo reads sid and expiry out of a token WITHOUT verifying the
// signature. Callers use it for introspection of tokens they just minted or
// already verified; the returned error is an explicit branch so the fallback
// (fresh sid, short default expiry) never hides a parse failure.
func ParseSessionInfo(tokenString string) (SessionInfo, error) {
	parser := jwt.NewParser()

	var claims Claims
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		return SessionInfo{}, fmt.Errorf("failed to parse token: %w", err)
	}

	info := SessionInfo{SessionID: claims.SessionID}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return info, nil
}

// SessionIDFromToken returns the sid claim of a token, or "" when the token
// cannot be parsed or carries no sid.
func SessionIDFromToken(tokenString string) string {
	info, err := ParseSessionInfo(tokenString)
	if err != nil {
		return ""
	}
	return info.SessionID
}
