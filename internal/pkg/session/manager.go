// internal/pkg/session/manager.go
package session

import (
	"context"
	"fmt"
	"time"

	"auth-service/internal/domain/auth"
	"auth-service/internal/pkg/cache"
	xerrors "auth-service/internal/pkg/errors"
	"auth-service/internal/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	cacheKeyPrefix = "session_valid:"

	// defaultCacheTTL applies when a session has no recorded expiry.
	defaultCacheTTL = 60 * time.Second
	// minCacheTTL floors the TTL when the expiry is already past or unknown.
	minCacheTTL = 10 * time.Second
	// negativeCacheTTL keeps known-invalid answers short-lived so a recreated
	// session is not denied for long.
	negativeCacheTTL = 10 * time.Second

	// defaultSessionLife is the fallback expiry when a refresh token yields
	// no usable expiry at all.
	defaultSessionLife = 60 * time.Second
)

// Store is the durable session record. The postgres SessionRepository
// implements it; tests substitute an in-memory fake. Lookups return
// xerrors.ErrNotFound on a miss.
type Store interface {
	Create(ctx context.Context, session *auth.Session) error
	Update(ctx context.Context, session *auth.Session) error
	FindValidBySessionID(ctx context.Context, sid, userID string) (*auth.Session, error)
	FindValidByToken(ctx context.Context, token string) (*auth.Session, error)
	ListValidByUser(ctx context.Context, userID string) ([]*auth.Session, error)
	Delete(ctx context.Context, id int64) error
	DeleteByIDs(ctx context.Context, ids []int64) error
}

// Manager is the only component that mutates the session store and the
// validity cache together. The store is authoritative; the cache only ever
// answers "is this sid still valid" and is warmed after a successful persist.
type Manager struct {
	store  Store
	cache  cache.Cache
	logger *zap.Logger
}

func NewManager(store Store, c cache.Cache, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		cache:  c,
		logger: logger,
	}
}

// CreateSession persists a new session row for a freshly minted refresh token
// and warms the cache. Token introspection is an optimization, not an
// integrity boundary: a token without a recoverable sid or expiry falls back
// to a generated sid and a short default expiry instead of failing.
func (m *Manager) CreateSession(ctx context.Context, refreshToken, userID string) (*auth.Session, error) {
	sid, expiresAt := m.sessionInfoOrFallback(refreshToken, "")

	session := &auth.Session{
		SessionID: sid,
		Token:     refreshToken,
		UserID:    userID,
		IsValid:   true,
		ExpiresAt: &expiresAt,
	}

	if err := m.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	// Cache warm comes last, contingent on the persist.
	m.warmCache(ctx, session.SessionID, session.ExpiresAt)

	return session, nil
}

// RefreshSession rotates an existing row to a newly minted refresh token.
// The sid is preserved when the new token lacks one, so in-flight access
// tokens that still carry the old sid keep resolving to this session.
// Rotating a nil row is a caller bug and fails immediately.
func (m *Manager) RefreshSession(ctx context.Context, existing *auth.Session, newRefreshToken string) error {
	if existing == nil {
		return fmt.Errorf("refresh of nil session: %w", xerrors.ErrInternal)
	}

	sid, expiresAt := m.sessionInfoOrFallback(newRefreshToken, existing.SessionID)

	existing.Token = newRefreshToken
	existing.SessionID = sid
	existing.ExpiresAt = &expiresAt
	existing.IsValid = true

	if err := m.store.Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to rotate session: %w", err)
	}

	m.warmCache(ctx, existing.SessionID, existing.ExpiresAt)

	return nil
}

// InvalidateBySessionID deletes the valid row for a sid, if any, and always
// removes the cache entry. A non-empty userID restricts deletion to sessions
// owned by that user. Calling twice is a no-op the second time.
func (m *Manager) InvalidateBySessionID(ctx context.Context, sid, userID string) error {
	if sid == "" {
		return nil
	}

	session, err := m.store.FindValidBySessionID(ctx, sid, userID)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return fmt.Errorf("failed to look up session: %w", err)
	}

	if session != nil {
		if err := m.store.Delete(ctx, session.ID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
	}

	if err := m.cache.Remove(ctx, cacheKey(sid)); err != nil {
		return fmt.Errorf("failed to remove session cache entry: %w", err)
	}

	return nil
}

// InvalidateAllForUser removes every valid session for a user: each cache
// entry best-effort, then all rows in one batched delete.
func (m *Manager) InvalidateAllForUser(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	sessions, err := m.store.ListValidByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(sessions))
	for _, s := range sessions {
		// A single failed removal must not abort the batch; the entry ages
		// out within its TTL anyway.
		if err := m.cache.Remove(ctx, cacheKey(s.SessionID)); err != nil {
			m.logger.Warn("failed to remove session cache entry",
				zap.String("sid", s.SessionID),
				zap.Error(err),
			)
		}
		ids = append(ids, s.ID)
	}

	if err := m.store.DeleteByIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	return nil
}

// IsSessionValid answers the per-request revocation check, cache-first. A
// cache hit of either polarity returns without touching the store. On a miss
// the store decides and the outcome is written back before returning.
func (m *Manager) IsSessionValid(ctx context.Context, sid string) (bool, error) {
	if sid == "" {
		return false, nil
	}

	key := cacheKey(sid)

	cached, found, err := m.cache.GetBool(ctx, key)
	if err != nil {
		// Degrade to a miss; the store remains authoritative.
		m.logger.Warn("session cache read failed", zap.String("sid", sid), zap.Error(err))
	} else if found {
		return cached, nil
	}

	session, err := m.store.FindValidBySessionID(ctx, sid, "")
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return false, fmt.Errorf("failed to look up session: %w", err)
	}

	valid := session != nil && !session.Expired(time.Now())

	if valid {
		m.setCache(ctx, key, true, computeTTL(session.ExpiresAt))
	} else {
		m.setCache(ctx, key, false, negativeCacheTTL)
	}

	return valid, nil
}

// SessionByToken resolves the valid session row currently holding a refresh
// token. Returns xerrors.ErrNotFound when no valid row matches, which is how
// reuse of an already-rotated token is detected.
func (m *Manager) SessionByToken(ctx context.Context, token string) (*auth.Session, error) {
	return m.store.FindValidByToken(ctx, token)
}

// --- helpers ---

// sessionInfoOrFallback introspects a refresh token for sid and expiry.
// fallbackSID is used when the token carries no sid (rotation keeps the old
// one); an empty fallback means generate a fresh sid.
func (m *Manager) sessionInfoOrFallback(refreshToken, fallbackSID string) (string, time.Time) {
	info, err := jwt.ParseSessionInfo(refreshToken)
	if err != nil {
		m.logger.Debug("refresh token introspection failed, using fallbacks", zap.Error(err))
	}

	sid := info.SessionID
	if sid == "" {
		sid = fallbackSID
	}
	if sid == "" {
		sid = uuid.NewString()
	}

	expiresAt := info.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().UTC().Add(defaultSessionLife)
	}

	return sid, expiresAt
}

func (m *Manager) warmCache(ctx context.Context, sid string, expiresAt *time.Time) {
	if sid == "" {
		return
	}
	m.setCache(ctx, cacheKey(sid), true, computeTTL(expiresAt))
}

func (m *Manager) setCache(ctx context.Context, key string, value bool, ttl time.Duration) {
	if err := m.cache.SetBool(ctx, key, value, ttl); err != nil {
		m.logger.Warn("session cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheKey(sid string) string {
	return cacheKeyPrefix + sid
}

func computeTTL(expiresAt *time.Time) time.Duration {
	ttl := defaultCacheTTL
	if expiresAt != nil {
		ttl = time.Until(*expiresAt)
	}
	if ttl <= 0 {
		ttl = minCacheTTL
	}
	return ttl
}
