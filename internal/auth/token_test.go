package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-signing-secret"
	t0         = int64(1_700_000_000)
)

func newTestManager(t *testing.T, clock Clock, opts ...TokenOption) *TokenManager {
	t.Helper()

	opts = append([]TokenOption{WithClock(clock)}, opts...)
	manager, err := NewTokenManager([]byte(testSecret), opts...)
	require.NoError(t, err)
	return manager
}

func TestTokenManager_RoundTrip(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, FixedClockAt(t0))
	subjects := []string{
		"123",
		"",
		strings.Repeat("a", 1000),
		strings.Repeat("ü", 1200),
		"用户-42 🛒",
		"with.dots.and \"quotes\"",
	}

	for _, subject := range subjects {
		issued, err := manager.Issue(subject)
		require.NoError(t, err)
		assert.Equal(t, subject, issued.Claims.Subject)

		claims, err := manager.Validate(issued.Token)
		require.NoError(t, err)
		assert.Equal(t, subject, claims.Subject)
		assert.Equal(t, t0, claims.IssuedAt)
		assert.Equal(t, int64(86400), claims.ExpiresAt-claims.IssuedAt)
	}
}

func TestTokenManager_WireFormat(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, FixedClockAt(t0))
	issued, err := manager.Issue("")
	require.NoError(t, err)

	segments := strings.Split(issued.Token, ".")
	require.Len(t, segments, 3)

	header, err := base64.RawURLEncoding.DecodeString(segments[0])
	require.NoError(t, err)
	var headerFields map[string]any
	require.NoError(t, json.Unmarshal(header, &headerFields))
	assert.Equal(t, "HS256", headerFields["alg"])

	payload, err := base64.RawURLEncoding.DecodeString(segments[1])
	require.NoError(t, err)
	var claimFields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &claimFields))
	assert.JSONEq(t, `""`, string(claimFields["sub"]), "empty subject must still be present")
	assert.Equal(t, "1700000000", string(claimFields["iat"]))
	assert.Equal(t, "1700086400", string(claimFields["exp"]))

	signature, err := base64.RawURLEncoding.DecodeString(segments[2])
	require.NoError(t, err)
	assert.Len(t, signature, 32)
}

func TestTokenManager_Expiry(t *testing.T) {
	t.Parallel()

	issuer := newTestManager(t, FixedClockAt(t0))
	issued, err := issuer.Issue("123")
	require.NoError(t, err)

	t.Run("just before expiry", func(t *testing.T) {
		claims, err := newTestManager(t, FixedClockAt(t0+86399)).Validate(issued.Token)
		require.NoError(t, err)
		assert.Equal(t, "123", claims.Subject)
	})

	t.Run("at expiry", func(t *testing.T) {
		_, err := newTestManager(t, FixedClockAt(t0+86400)).Validate(issued.Token)
		require.NoError(t, err)
	})

	t.Run("after expiry", func(t *testing.T) {
		_, err := newTestManager(t, FixedClockAt(t0+86401)).Validate(issued.Token)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("validator ignores issuer clock", func(t *testing.T) {
		// The issuing manager still believes it is t0.
		_, err := issuer.Validate(issued.Token)
		require.NoError(t, err)

		_, err = newTestManager(t, FixedClockAt(t0+10*86400)).Validate(issued.Token)
		require.ErrorIs(t, err, ErrExpired)
	})
}

func TestTokenManager_SignatureTamper(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, FixedClockAt(t0))
	issued, err := manager.Issue("123")
	require.NoError(t, err)

	lastDot := strings.LastIndex(issued.Token, ".")
	for i := lastDot + 1; i < len(issued.Token); i++ {
		for _, c := range []byte(base64URLAlphabet) {
			if c == issued.Token[i] {
				continue
			}
			tampered := issued.Token[:i] + string(c) + issued.Token[i+1:]
			_, err := manager.Validate(tampered)
			require.ErrorIs(t, err, ErrSignatureMismatch, "position %d -> %q", i, c)
		}
	}
}

func TestTokenManager_PayloadTamper(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, FixedClockAt(t0))
	issued, err := manager.Issue("123")
	require.NoError(t, err)

	segments := strings.Split(issued.Token, ".")
	payloadEnd := len(segments[0]) + 1 + len(segments[1])

	for i := 0; i < payloadEnd; i++ {
		if issued.Token[i] == '.' {
			continue
		}
		for _, c := range []byte(base64URLAlphabet) {
			if c == issued.Token[i] {
				continue
			}
			tampered := issued.Token[:i] + string(c) + issued.Token[i+1:]
			_, err := manager.Validate(tampered)
			require.ErrorIs(t, err, ErrSignatureMismatch, "position %d -> %q", i, c)
		}
	}

	t.Run("forged subject", func(t *testing.T) {
		forgedClaims := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin","iat":1700000000,"exp":1700086400}`))
		forged := segments[0] + "." + forgedClaims + "." + segments[2]
		_, err := manager.Validate(forged)
		require.ErrorIs(t, err, ErrSignatureMismatch)
	})
}

func TestTokenManager_WrongSecretAndAlgorithm(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, FixedClockAt(t0))

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenManager([]byte("another-secret"), WithClock(FixedClockAt(t0)))
		require.NoError(t, err)
		issued, err := other.Issue("123")
		require.NoError(t, err)

		_, err = manager.Validate(issued.Token)
		require.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Subject: "123", IssuedAt: t0, ExpiresAt: t0 + 60}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = manager.Validate(unsigned)
		require.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("hs512 with same secret", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{Subject: "123", IssuedAt: t0, ExpiresAt: t0 + 60}).
			SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = manager.Validate(token)
		require.ErrorIs(t, err, ErrSignatureMismatch)
	})
}

func TestTokenManager_Malformed(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, FixedClockAt(t0))
	tokens := []string{
		"",
		"abc",
		"a.b",
		"a.b.c.d",
		"!!!.e30.c2ln",
		"e30.***.c2ln",
		"e30=.e30.c2ln",
	}

	for _, token := range tokens {
		_, err := manager.Validate(token)
		require.ErrorIs(t, err, ErrMalformedToken, "token %q", token)
	}

	t.Run("signed garbage claims", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
		claims := base64.RawURLEncoding.EncodeToString([]byte(`not json`))
		signingString := header + "." + claims
		signature, err := jwt.SigningMethodHS256.Sign(signingString, []byte(testSecret))
		require.NoError(t, err)

		_, err = manager.Validate(signingString + "." + base64.RawURLEncoding.EncodeToString(signature))
		require.ErrorIs(t, err, ErrMalformedToken)
	})
}

func TestTokenManager_Concurrent(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, SystemClock())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			subject := strings.Repeat("s", i)
			issued, err := manager.Issue(subject)
			assert.NoError(t, err)
			claims, err := manager.Validate(issued.Token)
			assert.NoError(t, err)
			if claims != nil {
				assert.Equal(t, subject, claims.Subject)
			}
		}(i)
	}
	wg.Wait()
}

func TestNewTokenManager(t *testing.T) {
	t.Parallel()

	t.Run("empty secret", func(t *testing.T) {
		_, err := NewTokenManager(nil)
		require.Error(t, err)
	})

	t.Run("sub-second ttl", func(t *testing.T) {
		_, err := NewTokenManager([]byte(testSecret), WithTTL(500*time.Millisecond))
		require.Error(t, err)
	})

	t.Run("custom ttl", func(t *testing.T) {
		manager := newTestManager(t, FixedClockAt(t0), WithTTL(time.Hour))
		issued, err := manager.Issue("123")
		require.NoError(t, err)
		assert.Equal(t, t0+3600, issued.Claims.ExpiresAt)
		assert.Equal(t, time.Hour, manager.TTL())
	})

	t.Run("secret is copied", func(t *testing.T) {
		secret := []byte(testSecret)
		manager, err := NewTokenManager(secret, WithClock(FixedClockAt(t0)))
		require.NoError(t, err)
		issued, err := manager.Issue("123")
		require.NoError(t, err)

		secret[0] = 'X'
		_, err = manager.Validate(issued.Token)
		require.NoError(t, err)
	})
}

const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
