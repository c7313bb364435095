package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"go-shop-api/internal/auth"
	"go-shop-api/internal/model"
	"go-shop-api/internal/repository"
	"go-shop-api/pkg/apierror"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
	minPasswordLength = 8
	maxPasswordLength = 4096
)

type AuthService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	tokens *auth.TokenManager

	// Each argon2id call holds MemoryKiB of RAM; hashing is capped to a
	// fixed number of concurrent calls.
	hashSlots *semaphore.Weighted

	// Verified against for unknown usernames so a miss costs the same as a
	// wrong password.
	dummyHash string
}

func NewAuthService(users repository.UserRepository, hasher *auth.Hasher, tokens *auth.TokenManager, maxConcurrentHashes int) (*AuthService, error) {
	if maxConcurrentHashes < 1 {
		return nil, fmt.Errorf("max concurrent hashes must be at least 1, got %d", maxConcurrentHashes)
	}

	filler := make([]byte, 32)
	if _, err := rand.Read(filler); err != nil {
		return nil, fmt.Errorf("generate dummy credential: %w", err)
	}
	dummyHash, err := hasher.Hash(filler)
	if err != nil {
		return nil, fmt.Errorf("hash dummy credential: %w", err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		hashSlots: semaphore.NewWeighted(int64(maxConcurrentHashes)),
		dummyHash: dummyHash,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, username string, password string) (model.PublicUser, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return model.PublicUser{}, err
	}
	if err := validatePassword(password); err != nil {
		return model.PublicUser{}, err
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return model.PublicUser{}, model.ErrUserAlreadyExists
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, err
	}

	hash, err := s.hash(ctx, password)
	if err != nil {
		return model.PublicUser{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return model.PublicUser{}, err
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user.Public(), nil
}

// Login answers model.ErrInvalidCredentials for both an unknown username and
// a wrong password.
func (s *AuthService) Login(ctx context.Context, username string, password string) (model.TokenResponse, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, model.ErrUserNotFound) {
		if _, err := s.verify(ctx, password, s.dummyHash); err != nil {
			return model.TokenResponse{}, err
		}
		return model.TokenResponse{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenResponse{}, err
	}

	ok, err := s.verify(ctx, password, user.PasswordHash)
	if err != nil {
		return model.TokenResponse{}, err
	}
	if !ok {
		return model.TokenResponse{}, model.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, password)
	}

	return s.issue(user)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.verify(ctx, currentPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrInvalidCredentials
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hash(ctx, newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	slog.Info("password changed", "user_id", user.ID)
	return nil
}

// Authenticate validates an access token and returns its subject. Every
// failure wraps model.ErrUnauthorized.
func (s *AuthService) Authenticate(token string) (string, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", model.ErrUnauthorized)
	}
	return claims.Subject, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *AuthService) issue(user model.User) (model.TokenResponse, error) {
	issued, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("issue access token: %w", err)
	}

	return model.TokenResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresIn:   issued.Claims.ExpiresAt - issued.Claims.IssuedAt,
		ExpiresAt:   time.Unix(issued.Claims.ExpiresAt, 0).UTC(),
		User:        user.Public(),
	}, nil
}

// upgradeHash replaces a legacy or outdated hash after a successful login.
// Failure only leaves the old hash in place.
func (s *AuthService) upgradeHash(ctx context.Context, userID string, password string) {
	hash, err := s.hash(ctx, password)
	if err != nil {
		slog.Warn("password rehash failed", "user_id", userID, "error", err)
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		slog.Warn("password rehash not stored", "user_id", userID, "error", err)
		return
	}
	slog.Info("password hash upgraded", "user_id", userID)
}

func (s *AuthService) hash(ctx context.Context, password string) (string, error) {
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for hash slot: %w", err)
	}
	defer s.hashSlots.Release(1)

	return s.hasher.Hash([]byte(password))
}

func (s *AuthService) verify(ctx context.Context, password string, encoded string) (bool, error) {
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("wait for hash slot: %w", err)
	}
	defer s.hashSlots.Release(1)

	return s.hasher.Verify([]byte(password), encoded), nil
}

func validateUsername(username string) error {
	length := utf8.RuneCountInString(username)
	if length < minUsernameLength || length > maxUsernameLength {
		return apierror.BadRequest("invalid username",
			fmt.Sprintf("username must be %d to %d characters", minUsernameLength, maxUsernameLength))
	}
	if strings.ContainsFunc(username, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return apierror.BadRequest("invalid username", "username must not contain control characters")
	}
	return nil
}

func validatePassword(password string) error {
	length := utf8.RuneCountInString(password)
	if length < minPasswordLength || len(password) > maxPasswordLength {
		return apierror.BadRequest("invalid password",
			fmt.Sprintf("password must be at least %d characters and at most %d bytes", minPasswordLength, maxPasswordLength))
	}
	return nil
}
