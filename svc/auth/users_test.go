package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/invoicedesk/svc/auth"
)

func TestService_CreateUser(t *testing.T) {
	t.Parallel()

	t.Run("creates active user with hashed password", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		svc, _ := newTestService(t, store)

		view, err := svc.CreateUser(context.Background(), auth.CreateUserInput{
			Name:     "Avery Reed",
			Email:    " Avery@Example.COM ",
			Password: "initial-pass",
		})
		require.NoError(t, err)
		assert.Equal(t, "avery@example.com", view.Email)
		assert.Equal(t, auth.RoleUser, view.Role)
		assert.True(t, view.IsActive)
		assert.False(t, view.MFAEnabled)

		stored := store.user(view.ID)
		assert.NotEqual(t, "initial-pass", stored.PasswordHash)

		// The account can log in straight away.
		res, err := svc.Login(context.Background(), "avery@example.com", "initial-pass")
		require.NoError(t, err)
		assert.Equal(t, auth.StatusSessionIssued, res.Status)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		seedUser(t, store, auth.RoleUser, true)
		svc, _ := newTestService(t, store)

		_, err := svc.CreateUser(context.Background(), auth.CreateUserInput{
			Name:     "Impostor",
			Email:    "jordan@example.com",
			Password: "whatever-pass",
		})
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
	})

	t.Run("new admin is forced into enrollment on login", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		svc, _ := newTestService(t, store)

		_, err := svc.CreateUser(context.Background(), auth.CreateUserInput{
			Name:     "Admin Person",
			Email:    "admin@example.com",
			Password: "admin-pass-1",
			Role:     auth.RoleAdmin,
		})
		require.NoError(t, err)

		res, err := svc.Login(context.Background(), "admin@example.com", "admin-pass-1")
		require.NoError(t, err)
		assert.Equal(t, auth.StatusEnrollmentRequired, res.Status)
	})
}

func TestService_Users(t *testing.T) {
	t.Parallel()

	store := newFakeStorage()
	seedUser(t, store, auth.RoleAdmin, true)
	svc, _ := newTestService(t, store)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.CreateUser(context.Background(), auth.CreateUserInput{
			Name:     "Listed User",
			Email:    email,
			Password: "list-pass-123",
		})
		require.NoError(t, err)
	}

	views, total, err := svc.Users(context.Background(), auth.UserFilter{Role: auth.RoleUser})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, views, 3)

	// Defaults kick in for out-of-range paging values.
	_, total, err = svc.Users(context.Background(), auth.UserFilter{Page: -1, PerPage: 1000})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
}

func TestService_SetUserStatus(t *testing.T) {
	t.Parallel()

	store := newFakeStorage()
	user := seedUser(t, store, auth.RoleUser, true)
	svc, _ := newTestService(t, store)

	// A live session exists before deactivation.
	res, err := svc.Login(context.Background(), user.Email, "s3cret-pass")
	require.NoError(t, err)

	view, err := svc.SetUserStatus(context.Background(), user.ID, false)
	require.NoError(t, err)
	assert.False(t, view.IsActive)
	assert.Equal(t, 0, store.tokenCount())

	_, err = svc.Refresh(context.Background(), res.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	_, err = svc.Login(context.Background(), user.Email, "s3cret-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	view, err = svc.SetUserStatus(context.Background(), user.ID, true)
	require.NoError(t, err)
	assert.True(t, view.IsActive)
}

func TestService_UpdateUser(t *testing.T) {
	t.Parallel()

	store := newFakeStorage()
	user := seedUser(t, store, auth.RoleUser, true)
	svc, _ := newTestService(t, store)

	name := "Renamed Person"
	email := "Renamed@Example.com"
	view, err := svc.UpdateUser(context.Background(), user.ID, auth.UserUpdate{
		Name:  &name,
		Email: &email,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Person", view.Name)
	assert.Equal(t, "renamed@example.com", view.Email)

	_, err = svc.UpdateUser(context.Background(), uuid.New(), auth.UserUpdate{Name: &name})
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestService_DeleteUser(t *testing.T) {
	t.Parallel()

	store := newFakeStorage()
	user := seedUser(t, store, auth.RoleUser, true)
	svc, _ := newTestService(t, store)

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))
	_, err := svc.Profile(context.Background(), user.ID)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	err = svc.DeleteUser(context.Background(), user.ID)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
