package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"householdledger/internal/domain"
)

// fakeHasher is a deterministic PasswordHasher for tests.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) {
	return "hash:" + salt + ":" + password, nil
}

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+":"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

// fakeIssuer is a TokenIssuer returning a predictable token.
type fakeIssuer struct{}

func (fakeIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	return "token-for-" + userID, nil
}

func newAuthFixture() (domain.AuthService, *fakeUserRepo) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, fakeHasher{}, fakeIssuer{}, time.Hour, nil)
	return svc, userRepo
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with normalized email", func(t *testing.T) {
		svc, _ := newAuthFixture()
		user, err := svc.SignUp(ctx, "  Alice@Example.COM ", "supersecret", " Alice ")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, "salt", user.Salt)
		assert.NotEmpty(t, user.PasswordHash)
	})

	t.Run("malformed email returns ErrInvalidInput", func(t *testing.T) {
		svc, _ := newAuthFixture()
		_, err := svc.SignUp(ctx, "not-an-email", "supersecret", "Alice")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("short password returns ErrInvalidInput", func(t *testing.T) {
		svc, _ := newAuthFixture()
		_, err := svc.SignUp(ctx, "alice@example.com", "short", "Alice")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a token for valid credentials", func(t *testing.T) {
		svc, userRepo := newAuthFixture()
		require.NoError(t, userRepo.Create(ctx, &domain.User{
			ID: "user-1", Email: "alice@example.com",
			PasswordHash: "hash:salt:supersecret", Salt: "salt",
		}))

		token, user, err := svc.Login(ctx, "Alice@Example.com", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, "token-for-user-1", token)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("wrong password fails with a generic error", func(t *testing.T) {
		svc, userRepo := newAuthFixture()
		require.NoError(t, userRepo.Create(ctx, &domain.User{
			ID: "user-1", Email: "alice@example.com",
			PasswordHash: "hash:salt:supersecret", Salt: "salt",
		}))

		_, _, err := svc.Login(ctx, "alice@example.com", "wrong")
		require.EqualError(t, err, "invalid credentials")
	})

	t.Run("unknown email fails with the same generic error", func(t *testing.T) {
		svc, _ := newAuthFixture()
		_, _, err := svc.Login(ctx, "nobody@example.com", "supersecret")
		require.EqualError(t, err, "invalid credentials")
	})
}
