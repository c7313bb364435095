package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of every issued access token unless the
// deployment configures another one.
const DefaultTokenTTL = 24 * time.Hour

// DevelopmentSecret signs tokens when no secret is configured. It is public
// and must never be used outside local development.
const DevelopmentSecret = "dev-insecure-signing-secret-change-me"

var segmentEncoding = base64.RawURLEncoding.Strict()

// Claims is the token payload. IssuedAt and ExpiresAt are unix seconds.
type Claims struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

func (c Claims) GetIssuer() (string, error) {
	return "", nil
}

func (c Claims) GetSubject() (string, error) {
	return c.Subject, nil
}

func (c Claims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}

// IssuedToken is a signed token together with the claims it carries.
type IssuedToken struct {
	Token  string
	Claims Claims
}

// TokenManager issues and validates HS256 tokens binding a subject to an
// issue and expiry time.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
	parser *jwt.Parser
}

type TokenOption func(*TokenManager)

func WithClock(clock Clock) TokenOption {
	return func(m *TokenManager) {
		m.clock = clock
	}
}

func WithTTL(ttl time.Duration) TokenOption {
	return func(m *TokenManager) {
		m.ttl = ttl
	}
}

func NewTokenManager(secret []byte, opts ...TokenOption) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is required")
	}

	m := &TokenManager{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTokenTTL,
		clock:  SystemClock(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.ttl < time.Second {
		return nil, fmt.Errorf("token ttl must be at least one second, got %s", m.ttl)
	}
	if m.clock == nil {
		return nil, errors.New("token clock is required")
	}

	// Expiry is checked by Validate against the manager's clock, not by the
	// jwt validator, so the boundary stays "exp strictly before now".
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithoutClaimsValidation(),
	)

	return m, nil
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) Issue(subject string) (IssuedToken, error) {
	now := m.clock.Now().Unix()
	claims := Claims{
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now + int64(m.ttl/time.Second),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("%w: %v", ErrEncodingFailure, err)
	}

	return IssuedToken{Token: signed, Claims: claims}, nil
}

// Validate checks structure, signature and freshness, in that order. It
// returns ErrMalformedToken, ErrSignatureMismatch or ErrExpired.
func (m *TokenManager) Validate(token string) (*Claims, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, ErrMalformedToken
	}

	// The signature is checked over the raw segments before anything is
	// decoded, so tampering anywhere in header or claims is a mismatch.
	signature, err := segmentEncoding.DecodeString(segments[2])
	if err != nil {
		return nil, ErrSignatureMismatch
	}
	signingString := segments[0] + "." + segments[1]
	if err := jwt.SigningMethodHS256.Verify(signingString, signature, m.secret); err != nil {
		return nil, ErrSignatureMismatch
	}

	for _, segment := range segments[:2] {
		if _, err := segmentEncoding.DecodeString(segment); err != nil {
			return nil, ErrMalformedToken
		}
	}

	claims := &Claims{}
	if _, err := m.parser.ParseWithClaims(token, claims, m.key); err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return nil, ErrSignatureMismatch
		}
		return nil, ErrMalformedToken
	}

	if claims.ExpiresAt < m.clock.Now().Unix() {
		return nil, ErrExpired
	}

	return claims, nil
}

func (m *TokenManager) key(*jwt.Token) (any, error) {
	return m.secret, nil
}
