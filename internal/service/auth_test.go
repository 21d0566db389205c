package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository/memory"
	"carrental-backend/internal/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAuthService_RegisterCustomer(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tm := security.NewTokenManager(testSecret, time.Hour)
	audit := NewAuditService(store.Audit)
	svc := NewAuthService(store.Users, tm, audit)

	user, token, err := svc.RegisterCustomer(ctx, " Ada ", "ada@example.com", "555-0100", "DL-42")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, domain.UserRoleCustomer, user.Role)
	assert.Equal(t, domain.UserStatusActive, user.Status)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.UserRoleCustomer, claims.Role)

	entries, _ := audit.ListRecent(ctx, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionRegisterCustomer, entries[0].Action)
	assert.Equal(t, user.ID, entries[0].ActorID)

	t.Run("Duplicate email ignores case", func(t *testing.T) {
		_, _, err := svc.RegisterCustomer(ctx, "Ada", "ADA@example.com", "", "DL-43")
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Driver license is required", func(t *testing.T) {
		_, _, err := svc.RegisterCustomer(ctx, "Bob", "bob@example.com", "", " ")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Malformed email", func(t *testing.T) {
		_, _, err := svc.RegisterCustomer(ctx, "Bob", "bob-at-example", "", "DL-1")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tm := security.NewTokenManager(testSecret, time.Hour)
	svc := NewAuthService(store.Users, tm, NewAuditService(store.Audit))

	registered, _, err := svc.RegisterCustomer(ctx, "Ada", "ada@example.com", "", "DL-42")
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, " Ada@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
