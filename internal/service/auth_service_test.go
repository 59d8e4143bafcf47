package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

func newAuthFixture(users ...*domain.User) (*service.AuthService, *memUserRepo) {
	repo := newMemUserRepo(users...)
	tokens := auth.NewTokenManager("test-secret", 30)
	return service.NewAuthService(repo, tokens, bcrypt.MinCost), repo
}

func TestRegisterCreatesActiveUser(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), "Dana", "Dana@Example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, user.Active)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "", "dana@example.com", "correct-horse")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.Register(context.Background(), "Dana", "not-an-email", "correct-horse")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.Register(context.Background(), "Dana", "dana@example.com", "short")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "Dana", "dana@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Imposter", "dana@example.com", "battery-staple")
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture()

	registered, err := svc.Register(context.Background(), "Dana", "dana@example.com", "correct-horse")
	require.NoError(t, err)

	user, token, expiresAt, err := svc.Login(context.Background(), "dana@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	_, _, _, err = svc.Login(context.Background(), "dana@example.com", "wrong-password")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))

	_, _, _, err = svc.Login(context.Background(), "nobody@example.com", "correct-horse")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}

func TestLoginDeactivatedAccountRejected(t *testing.T) {
	svc, repo := newAuthFixture()

	user, err := svc.Register(context.Background(), "Dana", "dana@example.com", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateUser(context.Background(), admin, user.ID))
	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	_, _, _, err = svc.Login(context.Background(), "dana@example.com", "correct-horse")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}

func TestDeactivateUserRequiresAdmin(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), "Dana", "dana@example.com", "correct-horse")
	require.NoError(t, err)

	err = svc.DeactivateUser(context.Background(), requester, user.ID)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	err = svc.DeactivateUser(context.Background(), admin, "usr-missing")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}
