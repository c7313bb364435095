package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-shop-api/internal/auth"
	"go-shop-api/internal/model"
	"go-shop-api/internal/repository"
	"go-shop-api/pkg/apierror"
)

func cheapHashParams() auth.HashParams {
	params := auth.DefaultHashParams()
	params.MemoryKiB = 1024
	params.Iterations = 1
	return params
}

func newTestAuthService(t *testing.T) (*AuthService, *repository.MemoryUserRepository) {
	t.Helper()

	hasher, err := auth.NewHasher(cheapHashParams())
	require.NoError(t, err)
	tokens, err := auth.NewTokenManager([]byte("test-secret"))
	require.NoError(t, err)

	users := repository.NewMemoryUserRepository()
	svc, err := NewAuthService(users, hasher, tokens, 2)
	require.NoError(t, err)
	return svc, users
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users := newTestAuthService(t)

	user, err := svc.Register(ctx, "  alice ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)

	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))

	t.Run("duplicate ignoring case", func(t *testing.T) {
		_, err := svc.Register(ctx, "ALICE", "another password")
		assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
	})

	t.Run("rejects weak input", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob", "short")
		assert.ErrorIs(t, err, apierror.BadRequest("", ""))

		_, err = svc.Register(ctx, "  b ", "long enough password")
		assert.ErrorIs(t, err, apierror.BadRequest("", ""))

		_, err = svc.Register(ctx, "bo\nb", "long enough password")
		assert.ErrorIs(t, err, apierror.BadRequest("", ""))
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	registered, err := svc.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)

	t.Run("success issues a bearer token for the user", func(t *testing.T) {
		resp, err := svc.Login(ctx, "Alice", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, int64(auth.DefaultTokenTTL.Seconds()), resp.ExpiresIn)
		assert.Equal(t, registered.ID, resp.User.ID)

		subject, err := svc.Authenticate(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, subject)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrong horse")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)

		_, err = svc.Login(ctx, "mallory", "correct horse")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})
}

func TestAuthService_LoginUpgradesLegacyHash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users := newTestAuthService(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, model.User{ID: "u-legacy", Username: "carol", PasswordHash: string(legacy)}))

	_, err = svc.Login(ctx, "carol", "correct horse")
	require.NoError(t, err)

	stored, err := users.FindByID(ctx, "u-legacy")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
	assert.False(t, svc.hasher.NeedsRehash(stored.PasswordHash))

	_, err = svc.Login(ctx, "carol", "correct horse")
	assert.NoError(t, err)
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	user, err := svc.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong horse", "battery staple")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, "correct horse", "short")
	assert.ErrorIs(t, err, apierror.BadRequest("", ""))

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "correct horse", "battery staple"))

	_, err = svc.Login(ctx, "alice", "correct horse")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice", "battery staple")
	assert.NoError(t, err)

	err = svc.ChangePassword(ctx, "missing", "x", "battery staple")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Authenticate(token)
		assert.ErrorIs(t, err, model.ErrUnauthorized, token)
	}

	other, err := auth.NewTokenManager([]byte("other-secret"))
	require.NoError(t, err)
	issued, err := other.Issue("u-1")
	require.NoError(t, err)

	_, err = svc.Authenticate(issued.Token)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	assert.ErrorIs(t, err, auth.ErrSignatureMismatch)
}

func TestAuthService_HashingHonoursContext(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)

	require.NoError(t, svc.hashSlots.Acquire(context.Background(), 2))
	defer svc.hashSlots.Release(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Register(ctx, "alice", "correct horse")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.Login(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAuthService_RejectsZeroConcurrency(t *testing.T) {
	t.Parallel()

	hasher, err := auth.NewHasher(cheapHashParams())
	require.NoError(t, err)
	tokens, err := auth.NewTokenManager([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewAuthService(repository.NewMemoryUserRepository(), hasher, tokens, 0)
	assert.Error(t, err)
}
