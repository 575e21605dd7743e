package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyPair(t *testing.T) (*Generator, *Verifier) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	gen := NewGenerator(key, "test-issuer", "test-audience", "test-kid", 15*time.Minute, time.Hour)
	ver := NewVerifier(&key.PublicKey, "test-issuer", "test-audience")
	return gen, ver
}

func testIdentity() Identity {
	return Identity{
		UserID:      "42",
		Username:    "jdoe",
		Email:       "jdoe@example.com",
		AccountType: "staff",
		RoleIDs:     []int64{1, 3},
		SessionID:   "sid-abc",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	gen, ver := testKeyPair(t)

	token, err := gen.GenerateAccessToken(testIdentity())
	require.NoError(t, err)

	claims, err := ver.VerifyAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "sid-abc", claims.SessionID)
	assert.Equal(t, PurposeAccess, claims.SessionPurpose)
	assert.Equal(t, []int64{1, 3}, claims.RoleIDs)
	assert.NotEmpty(t, claims.ID, "jti must be set")
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	gen, ver := testKeyPair(t)

	token, err := gen.GenerateRefreshToken(testIdentity())
	require.NoError(t, err)

	claims, err := ver.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, PurposeRefresh, claims.SessionPurpose)
	assert.Equal(t, "sid-abc", claims.SessionID)
}

func TestPurposeMismatchRejected(t *testing.T) {
	gen, ver := testKeyPair(t)

	access, err := gen.GenerateAccessToken(testIdentity())
	require.NoError(t, err)
	refresh, err := gen.GenerateRefreshToken(testIdentity())
	require.NoError(t, err)

	_, err = ver.VerifyRefreshToken(access)
	assert.Error(t, err, "access token must not pass as refresh")

	_, err = ver.VerifyAccessToken(refresh)
	assert.Error(t, err, "refresh token must not pass as access")
}

func TestExpiredTokenRejected(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	gen := NewGenerator(key, "test-issuer", "test-audience", "", -time.Minute, -time.Minute)
	ver := NewVerifier(&key.PublicKey, "test-issuer", "test-audience")

	token, err := gen.GenerateAccessToken(testIdentity())
	require.NoError(t, err)

	_, err = ver.Verify(token)
	assert.Error(t, err)
}

func TestWrongKeyRejected(t *testing.T) {
	gen, _ := testKeyPair(t)
	_, otherVer := testKeyPair(t)

	token, err := gen.GenerateAccessToken(testIdentity())
	require.NoError(t, err)

	_, err = otherVer.Verify(token)
	assert.Error(t, err)
}

func TestWrongIssuerRejected(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	gen := NewGenerator(key, "other-issuer", "test-audience", "", 15*time.Minute, time.Hour)
	ver := NewVerifier(&key.PublicKey, "test-issuer", "test-audience")

	token, err := gen.GenerateAccessToken(testIdentity())
	require.NoError(t, err)

	_, err = ver.Verify(token)
	assert.Error(t, err)
}

func TestWrongAudienceRejected(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	gen := NewGenerator(key, "test-issuer", "other-audience", "", 15*time.Minute, time.Hour)
	ver := NewVerifier(&key.PublicKey, "test-issuer", "test-audience")

	token, err := gen.GenerateAccessToken(testIdentity())
	require.NoError(t, err)

	_, err = ver.Verify(token)
	assert.Error(t, err)
}

func TestParseSessionInfo(t *testing.T) {
	gen, _ := testKeyPair(t)

	token, err := gen.GenerateRefreshToken(testIdentity())
	require.NoError(t, err)

	info, err := ParseSessionInfo(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-abc", info.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), info.ExpiresAt, 10*time.Second)
}

func TestParseSessionInfoGarbage(t *testing.T) {
	_, err := ParseSessionInfo("definitely.not.a-jwt")
	assert.Error(t, err)
}

func TestSessionIDFromToken(t *testing.T) {
	gen, _ := testKeyPair(t)

	withSid, err := gen.GenerateAccessToken(testIdentity())
	require.NoError(t, err)
	assert.Equal(t, "sid-abc", SessionIDFromToken(withSid))

	id := testIdentity()
	id.SessionID = ""
	withoutSid, err := gen.GenerateAccessToken(id)
	require.NoError(t, err)
	assert.Empty(t, SessionIDFromToken(withoutSid))

	assert.Empty(t, SessionIDFromToken("garbage"))
}

func TestClaimsIdentityPreservesSid(t *testing.T) {
	gen, ver := testKeyPair(t)

	token, err := gen.GenerateRefreshToken(testIdentity())
	require.NoError(t, err)

	claims, err := ver.VerifyRefreshToken(token)
	require.NoError(t, err)

	id := claims.Identity()
	assert.Equal(t, testIdentity(), id)
}

func TestClaimsHelpers(t *testing.T) {
	c := &Claims{RoleIDs: []int64{2, 5}}
	c.Subject = "17"

	assert.True(t, c.HasRole(5))
	assert.False(t, c.HasRole(9))
	assert.Equal(t, int64(17), c.UserIDInt())

	c.Subject = "not-a-number"
	assert.Equal(t, int64(0), c.UserIDInt())
}
