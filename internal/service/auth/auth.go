// internal/service/auth/auth.go
package auth

import (
	"context"
	"strconv"

	"auth-service/internal/domain/auth"
	"auth-service/internal/pkg/cipher"
	xerrors "auth-service/internal/pkg/errors"
	"auth-service/internal/pkg/jwt"
	"auth-service/internal/pkg/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserFinder is the user lookup collaborator. User CRUD is out of scope here;
// login only needs enough identity fields to build claims.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*auth.User, error)
}

// PasswordVerifier is the opaque credential check capability.
type PasswordVerifier interface {
	Verify(plain, hash string) bool
}

// BcryptVerifier is the default PasswordVerifier.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// AuthService orchestrates login, rotation and logout across the token
// issuer and the session manager.
type AuthService struct {
	users      UserFinder
	passwords  PasswordVerifier
	jwtManager *jwt.Manager
	sessions   *session.Manager
	cipher     *cipher.Aes
	logger     *zap.Logger
}

func NewAuthService(
	users UserFinder,
	passwords PasswordVerifier,
	jwtManager *jwt.Manager,
	sessions *session.Manager,
	aes *cipher.Aes,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		passwords:  passwords,
		jwtManager: jwtManager,
		sessions:   sessions,
		cipher:     aes,
		logger:     logger,
	}
}

// Login verifies credentials, mints an access/refresh pair bound to a fresh
// sid and persists the session. Whether the username or the password was
// wrong is never distinguished in the returned error.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.JwtToken, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, xerrors.Wrap(err, "login lookup failed")
	}

	if !s.passwords.Verify(req.Password, user.Password) {
		return nil, xerrors.ErrInvalidCredentials
	}

	userID := strconv.FormatInt(user.ID, 10)
	sid := uuid.NewString()

	identity := jwt.Identity{
		UserID:      userID,
		Username:    user.Username,
		Email:       user.Email,
		AccountType: user.AccountType,
		RoleIDs:     user.RoleIDs,
		SessionID:   sid,
	}

	access, err := s.jwtManager.Generator.GenerateAccessToken(identity)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to generate access token")
	}

	refresh, err := s.jwtManager.Generator.GenerateRefreshToken(identity)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to generate refresh token")
	}

	if _, err := s.sessions.CreateSession(ctx, refresh, userID); err != nil {
		return nil, xerrors.Wrap(err, "failed to create session")
	}

	opaqueID, err := s.cipher.Encrypt(userID)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to encrypt user id")
	}

	s.logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("sid", sid),
	)

	return &auth.JwtToken{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       opaqueID,
		Username:     user.Username,
	}, nil
}

// RefreshToken exchanges a valid refresh token for a new pair and rotates
// the underlying session. Presenting a token that no longer matches a valid
// row (already rotated or revoked) is rejected.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*auth.RefreshJwtToken, error) {
	claims, err := s.jwtManager.Verifier.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, xerrors.ErrInvalidToken
	}

	existing, err := s.sessions.SessionByToken(ctx, refreshToken)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrSessionNotFound
		}
		return nil, xerrors.Wrap(err, "failed to look up session")
	}

	// New pair is minted from the old token's claims; the sid claim rides
	// along so the rotated session keeps its identity.
	identity := claims.Identity()

	newAccess, err := s.jwtManager.Generator.GenerateAccessToken(identity)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to generate access token")
	}

	newRefresh, err := s.jwtManager.Generator.GenerateRefreshToken(identity)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to generate refresh token")
	}

	if err := s.sessions.RefreshSession(ctx, existing, newRefresh); err != nil {
		return nil, xerrors.Wrap(err, "failed to rotate session")
	}

	return &auth.RefreshJwtToken{
		AccessToken:  newAccess,
		RefreshToken: newRefresh,
	}, nil
}

// Logout ends the caller's own session. When no sid can be recovered from
// the presented bearer token, every session of the user is invalidated
// instead of silently doing nothing. Failures surface as an opaque server
// error.
func (s *AuthService) Logout(ctx context.Context, rawToken, userID string) error {
	sid := jwt.SessionIDFromToken(rawToken)

	if sid != "" {
		if err := s.sessions.InvalidateBySessionID(ctx, sid, userID); err != nil {
			s.logger.Error("logout failed", zap.String("sid", sid), zap.Error(err))
			return xerrors.ErrInternal
		}
		return nil
	}

	if err := s.sessions.InvalidateAllForUser(ctx, userID); err != nil {
		s.logger.Error("logout-all fallback failed", zap.String("user_id", userID), zap.Error(err))
		return xerrors.ErrInternal
	}
	return nil
}

// ForceLogoutAllForCurrentUser invalidates every session the user owns.
func (s *AuthService) ForceLogoutAllForCurrentUser(ctx context.Context, userID string) error {
	if err := s.sessions.InvalidateAllForUser(ctx, userID); err != nil {
		s.logger.Error("force logout failed", zap.String("user_id", userID), zap.Error(err))
		return xerrors.ErrInternal
	}
	return nil
}
