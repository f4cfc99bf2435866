package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func testKey() []byte {
	key := make([]byte, KeyLength)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(testParams)

	encoded, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.True(t, h.Verify(encoded, "hunter2"))
	assert.False(t, h.Verify(encoded, "hunter3"))
	assert.False(t, h.Verify("garbage", "hunter2"))
}

func TestHasher_SaltsDiffer(t *testing.T) {
	h := NewHasher(testParams)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasher_Rejects(t *testing.T) {
	h := NewHasher(testParams)

	_, err := h.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = h.Hash(strings.Repeat("x", MaxPasswordLength+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHasher_NeedsRehash(t *testing.T) {
	h := NewHasher(testParams)
	encoded, err := h.Hash("pw")
	require.NoError(t, err)

	assert.False(t, h.NeedsRehash(encoded))
	assert.True(t, NewHasher(DefaultParams).NeedsRehash(encoded))
	assert.True(t, h.NeedsRehash("not-a-hash"))
}

func TestTokenService_AccessToken(t *testing.T) {
	svc, err := NewTokenService(testKey(), 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	issued, err := svc.GenerateAccessToken("user-1", "a@example.com", "sess-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(issued.Token, "v4.local."))
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, 5*time.Second)

	claims, err := svc.VerifyAccessToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestTokenService_Expired(t *testing.T) {
	svc, err := NewTokenService(testKey(), time.Minute, time.Hour)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return past }
	issued, err := svc.GenerateAccessToken("user-1", "a@example.com", "sess-1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.VerifyAccessToken(issued.Token)
	assert.Error(t, err)
}

func TestTokenService_WrongKey(t *testing.T) {
	a, err := NewTokenService(testKey(), time.Minute, time.Hour)
	require.NoError(t, err)

	other := testKey()
	other[0] = 0xFF
	b, err := NewTokenService(other, time.Minute, time.Hour)
	require.NoError(t, err)

	issued, err := a.GenerateAccessToken("user-1", "a@example.com", "sess-1")
	require.NoError(t, err)
	_, err = b.VerifyAccessToken(issued.Token)
	assert.Error(t, err)
}

func TestNewTokenService_BadKey(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestOpaqueTokens(t *testing.T) {
	a, err := GenerateOpaqueToken()
	require.NoError(t, err)
	b, err := GenerateOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, a, opaqueTokenLength)
	assert.NotEqual(t, a, b)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, HashToken(a), HashToken(b))
	assert.Len(t, HashToken(a), 64)
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := t.TempDir()

	key, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key, KeyLength)

	info, err := os.Stat(filepath.Join(dir, keyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestDecodeKey(t *testing.T) {
	_, err := DecodeKey("abc")
	assert.Error(t, err)

	_, err = DecodeKey(strings.Repeat("zz", KeyLength))
	assert.Error(t, err)

	key, err := DecodeKey(strings.Repeat("0a", KeyLength) + "\n")
	require.NoError(t, err)
	assert.Len(t, key, KeyLength)
}
