// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	priv       *rsa.PrivateKey
	issuer     string
	audience   string
	kid        string // key id for rotation
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience, kid string, accessTTL, refreshTTL time.Duration) *Generator {
	return &Generator{
		priv:       priv,
		issuer:     issuer,
		audience:   audience,
		kid:        kid,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

func (g *Generator) generate(id Identity, purpose string, ttl time.Duration) (string, error) {
	if g.priv == nil {
		return "", fmt.Errorf("jwt generator has nil private key")
	}

	now := time.Now()
	claims := &Claims{
		Username:       id.Username,
		Email:          id.Email,
		AccountType:    id.AccountType,
		RoleIDs:        id.RoleIDs,
		SessionID:      id.SessionID,
		SessionPurpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   id.UserID,
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}

	return tok.SignedString(g.priv)
}

// GenerateAccessToken generates a short-lived access token for the identity.
func (g *Generator) GenerateAccessToken(id Identity) (string, error) {
	return g.generate(id, PurposeAccess, g.AccessTTL)
}

// GenerateRefreshToken generates a refresh token (longer TTL). The sid claim
// on the identity travels inside the token and binds it to a session row.
func (g *Generator) GenerateRefreshToken(id Identity) (string, error) {
	return g.generate(id, PurposeRefresh, g.RefreshTTL)
}
