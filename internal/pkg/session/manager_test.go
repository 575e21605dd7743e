package session

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"auth-service/internal/domain/auth"
	"auth-service/internal/pkg/cache"
	xerrors "auth-service/internal/pkg/errors"
	"auth-service/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore is an in-memory Store double.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]auth.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[int64]auth.Session)}
}

func (f *fakeStore) Create(_ context.Context, s *auth.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeStore) Update(_ context.Context, s *auth.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[s.ID]; !ok {
		return xerrors.ErrNotFound
	}
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeStore) FindValidBySessionID(_ context.Context, sid, userID string) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.SessionID == sid && s.IsValid && (userID == "" || s.UserID == userID) {
			out := s
			return &out, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeStore) FindValidByToken(_ context.Context, token string) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.Token == token && s.IsValid {
			out := s
			return &out, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeStore) ListValidByUser(_ context.Context, userID string) ([]*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*auth.Session
	for _, s := range f.sessions {
		if s.UserID == userID && s.IsValid {
			c := s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeStore) DeleteByIDs(_ context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.sessions, id)
	}
	return nil
}

func newTestGenerator(t *testing.T) *jwt.Generator {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return jwt.NewGenerator(key, "test-issuer", "test-audience", "", 15*time.Minute, time.Hour)
}

func refreshTokenWithSid(t *testing.T, gen *jwt.Generator, userID, sid string) string {
	t.Helper()
	token, err := gen.GenerateRefreshToken(jwt.Identity{UserID: userID, SessionID: sid})
	require.NoError(t, err)
	return token
}

func newTestManager(t *testing.T) (*Manager, *fakeStore, *cache.MemoryCache, *jwt.Generator) {
	t.Helper()
	store := newFakeStore()
	c := cache.NewMemoryCache()
	return NewManager(store, c, zap.NewNop()), store, c, newTestGenerator(t)
}

func TestCreateSessionBindsSidFromToken(t *testing.T) {
	mgr, _, _, gen := newTestManager(t)
	ctx := context.Background()

	token := refreshTokenWithSid(t, gen, "7", "sid-1")

	session, err := mgr.CreateSession(ctx, token, "7")
	require.NoError(t, err)

	assert.Equal(t, "sid-1", session.SessionID)
	assert.Equal(t, "7", session.UserID)
	assert.True(t, session.IsValid)
	require.NotNil(t, session.ExpiresAt)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	valid, err := mgr.IsSessionValid(ctx, "sid-1")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestCreateSessionUnparsableTokenFallsBack(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	ctx := context.Background()

	session, err := mgr.CreateSession(ctx, "not-a-jwt", "7")
	require.NoError(t, err)

	assert.NotEmpty(t, session.SessionID)
	require.NotNil(t, session.ExpiresAt)
	// Short default expiry, not a long-lived session.
	assert.WithinDuration(t, time.Now().Add(defaultSessionLife), *session.ExpiresAt, 5*time.Second)

	valid, err := mgr.IsSessionValid(ctx, session.SessionID)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestIsSessionValidEmptySid(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)

	valid, err := mgr.IsSessionValid(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestIsSessionValidCacheHitSkipsStore(t *testing.T) {
	mgr, store, _, gen := newTestManager(t)
	ctx := context.Background()

	token := refreshTokenWithSid(t, gen, "7", "sid-hit")
	session, err := mgr.CreateSession(ctx, token, "7")
	require.NoError(t, err)

	// Remove the row behind the cache's back; the warmed entry still answers.
	require.NoError(t, store.Delete(ctx, session.ID))

	valid, err := mgr.IsSessionValid(ctx, "sid-hit")
	require.NoError(t, err)
	assert.True(t, valid, "cache hit should not consult the store")
}

func TestIsSessionValidMissWritesBackNegative(t *testing.T) {
	mgr, _, c, _ := newTestManager(t)
	ctx := context.Background()

	valid, err := mgr.IsSessionValid(ctx, "unknown-sid")
	require.NoError(t, err)
	assert.False(t, valid)

	cached, found, err := c.GetBool(ctx, "session_valid:unknown-sid")
	require.NoError(t, err)
	assert.True(t, found, "negative outcome should be cached")
	assert.False(t, cached)
}

func TestIsSessionValidExpiredRow(t *testing.T) {
	mgr, store, c, _ := newTestManager(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	require.NoError(t, store.Create(ctx, &auth.Session{
		SessionID: "sid-old",
		Token:     "r1",
		UserID:    "7",
		IsValid:   true,
		ExpiresAt: &past,
	}))

	valid, err := mgr.IsSessionValid(ctx, "sid-old")
	require.NoError(t, err)
	assert.False(t, valid)

	cached, found, err := c.GetBool(ctx, "session_valid:sid-old")
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, cached)
}

func TestInvalidateBySessionID(t *testing.T) {
	mgr, _, _, gen := newTestManager(t)
	ctx := context.Background()

	token := refreshTokenWithSid(t, gen, "7", "sid-gone")
	_, err := mgr.CreateSession(ctx, token, "7")
	require.NoError(t, err)

	require.NoError(t, mgr.InvalidateBySessionID(ctx, "sid-gone", "7"))

	// Cache is actively cleared, not just left to expire.
	valid, err := mgr.IsSessionValid(ctx, "sid-gone")
	require.NoError(t, err)
	assert.False(t, valid)

	// Second call is a no-op, never an error.
	require.NoError(t, mgr.InvalidateBySessionID(ctx, "sid-gone", "7"))
}

func TestInvalidateBySessionIDScopedToOwner(t *testing.T) {
	mgr, store, _, gen := newTestManager(t)
	ctx := context.Background()

	token := refreshTokenWithSid(t, gen, "7", "sid-owned")
	_, err := mgr.CreateSession(ctx, token, "7")
	require.NoError(t, err)

	// A different user cannot invalidate the session by guessing its sid.
	require.NoError(t, mgr.InvalidateBySessionID(ctx, "sid-owned", "8"))

	_, err = store.FindValidBySessionID(ctx, "sid-owned", "")
	require.NoError(t, err, "row must survive a mismatched-owner invalidation")

	valid, err := mgr.IsSessionValid(ctx, "sid-owned")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestInvalidateAllForUser(t *testing.T) {
	mgr, _, _, gen := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.CreateSession(ctx, refreshTokenWithSid(t, gen, "7", "sid-a1"), "7")
	require.NoError(t, err)
	_, err = mgr.CreateSession(ctx, refreshTokenWithSid(t, gen, "7", "sid-a2"), "7")
	require.NoError(t, err)
	_, err = mgr.CreateSession(ctx, refreshTokenWithSid(t, gen, "8", "sid-b1"), "8")
	require.NoError(t, err)

	require.NoError(t, mgr.InvalidateAllForUser(ctx, "7"))

	for _, sid := range []string{"sid-a1", "sid-a2"} {
		valid, err := mgr.IsSessionValid(ctx, sid)
		require.NoError(t, err)
		assert.False(t, valid, "sid %s should be invalid", sid)
	}

	valid, err := mgr.IsSessionValid(ctx, "sid-b1")
	require.NoError(t, err)
	assert.True(t, valid, "other users' sessions are unaffected")
}

func TestRefreshSessionRotatesToken(t *testing.T) {
	mgr, store, _, gen := newTestManager(t)
	ctx := context.Background()

	oldToken := refreshTokenWithSid(t, gen, "7", "sid-rot")
	session, err := mgr.CreateSession(ctx, oldToken, "7")
	require.NoError(t, err)

	newToken := refreshTokenWithSid(t, gen, "7", "sid-rot")
	require.NoError(t, mgr.RefreshSession(ctx, session, newToken))

	updated, err := store.FindValidBySessionID(ctx, "sid-rot", "")
	require.NoError(t, err)
	assert.Equal(t, newToken, updated.Token)
	assert.Equal(t, "sid-rot", updated.SessionID)
	assert.Equal(t, "7", updated.UserID)
	assert.True(t, updated.IsValid)

	// The old token no longer resolves.
	_, err = store.FindValidByToken(ctx, oldToken)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestRefreshSessionKeepsSidWhenTokenLacksOne(t *testing.T) {
	mgr, store, _, gen := newTestManager(t)
	ctx := context.Background()

	session, err := mgr.CreateSession(ctx, refreshTokenWithSid(t, gen, "7", "sid-keep"), "7")
	require.NoError(t, err)

	// A refresh token minted without a sid claim must not orphan the session.
	tokenWithoutSid := refreshTokenWithSid(t, gen, "7", "")
	require.NoError(t, mgr.RefreshSession(ctx, session, tokenWithoutSid))

	updated, err := store.FindValidBySessionID(ctx, "sid-keep", "")
	require.NoError(t, err)
	assert.Equal(t, tokenWithoutSid, updated.Token)
}

func TestRefreshSessionNilRowFailsFast(t *testing.T) {
	mgr, _, _, gen := newTestManager(t)

	err := mgr.RefreshSession(context.Background(), nil, refreshTokenWithSid(t, gen, "7", "x"))
	assert.Error(t, err)
}

func TestComputeTTL(t *testing.T) {
	assert.Equal(t, defaultCacheTTL, computeTTL(nil))

	future := time.Now().Add(5 * time.Minute)
	ttl := computeTTL(&future)
	assert.Greater(t, ttl, 4*time.Minute)

	past := time.Now().Add(-time.Minute)
	assert.Equal(t, minCacheTTL, computeTTL(&past))
}
