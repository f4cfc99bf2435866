package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/mydiary/mydiary/internal/id"
)

const (
	tokenIssuer   = "mydiary"
	tokenAudience = "mydiary-client"

	// opaqueTokenLength is the nanoid length of refresh and reset tokens
	// (~190 bits with the default alphabet).
	opaqueTokenLength = 32
)

// TokenService issues PASETO v4.local access tokens and opaque refresh tokens.
type TokenService struct {
	key             paseto.V4SymmetricKey
	accessDuration  time.Duration
	refreshDuration time.Duration
	now             func() time.Time
}

// NewTokenService creates a token service from a raw 32-byte key.
func NewTokenService(key []byte, accessDuration, refreshDuration time.Duration) (*TokenService, error) {
	if len(key) != KeyLength {
		return nil, fmt.Errorf("token key must be %d bytes, got %d", KeyLength, len(key))
	}
	sk, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create symmetric key: %w", err)
	}
	return &TokenService{
		key:             sk,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		now:             time.Now,
	}, nil
}

// IssuedAccess is a freshly minted access token.
type IssuedAccess struct {
	Token     string
	ExpiresAt time.Time
}

// GenerateAccessToken mints an access token bound to a user and session.
func (s *TokenService) GenerateAccessToken(userID, email, sessionID string) (IssuedAccess, error) {
	now := s.now()
	exp := now.Add(s.accessDuration)

	jti, err := id.Generate("tok")
	if err != nil {
		return IssuedAccess{}, fmt.Errorf("generate token id: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(userID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(exp)
	token.SetJti(jti)
	//nolint:errcheck // Set only fails for values that don't marshal
	_ = token.Set("user_id", userID)
	//nolint:errcheck // Set only fails for values that don't marshal
	_ = token.Set("email", email)
	//nolint:errcheck // Set only fails for values that don't marshal
	_ = token.Set("sid", sessionID)

	return IssuedAccess{Token: token.V4Encrypt(s.key, nil), ExpiresAt: exp}, nil
}

// VerifyAccessToken decrypts and validates an access token.
func (s *TokenService) VerifyAccessToken(raw string) (*AccessClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	return &claims, nil
}

// GenerateOpaqueToken returns a random token for refresh and password-reset
// flows. Only its hash is ever stored.
func GenerateOpaqueToken() (string, error) {
	t, err := gonanoid.New(opaqueTokenLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return t, nil
}

// HashToken returns the hex SHA-256 of an opaque token for storage.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// AccessDuration is the configured access token lifetime.
func (s *TokenService) AccessDuration() time.Duration {
	return s.accessDuration
}

// RefreshDuration is the configured refresh token lifetime.
func (s *TokenService) RefreshDuration() time.Duration {
	return s.refreshDuration
}
