package auth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/invoicedesk/pkg/totp"
	"github.com/dmitrymomot/invoicedesk/svc/auth"
)

// enrollAdmin walks a seeded admin through the full enrollment flow and
// returns the raw TOTP secret and the plaintext backup codes.
func enrollAdmin(t *testing.T, svc *auth.Service, user auth.User) (string, []string) {
	t.Helper()
	enrollment, err := svc.IssueEnrollmentSecret(context.Background(), user.ID)
	require.NoError(t, err)

	code, err := totp.GenerateCode(enrollment.Secret)
	require.NoError(t, err)
	codes, err := svc.Enable(context.Background(), user.ID, code)
	require.NoError(t, err)
	return enrollment.Secret, codes
}

func TestService_IssueEnrollmentSecret(t *testing.T) {
	t.Parallel()

	t.Run("first call persists an encrypted pending secret", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, _ := newTestService(t, store)

		enrollment, err := svc.IssueEnrollmentSecret(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, enrollment.Secret)
		assert.Contains(t, enrollment.OTPAuthURL, "otpauth://totp/")
		assert.Contains(t, enrollment.OTPAuthURL, "issuer=TestDesk")
		assert.True(t, strings.HasPrefix(enrollment.QRCodeDataURL, "data:image/png;base64,"))

		stored := store.user(user.ID)
		assert.False(t, stored.MFAEnabled)
		require.NotEmpty(t, stored.MFASecret)
		assert.NotEqual(t, enrollment.Secret, stored.MFASecret)
	})

	t.Run("retry reuses the pending secret", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, _ := newTestService(t, store)

		first, err := svc.IssueEnrollmentSecret(context.Background(), user.ID)
		require.NoError(t, err)
		second, err := svc.IssueEnrollmentSecret(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Secret, second.Secret)
	})

	t.Run("already enabled", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, _ := newTestService(t, store)
		enrollAdmin(t, svc, user)

		_, err := svc.IssueEnrollmentSecret(context.Background(), user.ID)
		assert.ErrorIs(t, err, auth.ErrMFAAlreadyEnabled)
	})

	t.Run("non admin is indistinguishable from missing", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleUser, true)
		svc, _ := newTestService(t, store)

		_, err := svc.IssueEnrollmentSecret(context.Background(), user.ID)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
		_, err = svc.IssueEnrollmentSecret(context.Background(), uuid.New())
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}

func TestService_IssueSecret(t *testing.T) {
	t.Parallel()

	t.Run("always rotates the pending secret", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, _ := newTestService(t, store)

		first, err := svc.IssueSecret(context.Background(), user.ID)
		require.NoError(t, err)
		second, err := svc.IssueSecret(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.Secret, second.Secret)

		// Only the latest secret can complete enrollment.
		staleCode, err := totp.GenerateCode(first.Secret)
		require.NoError(t, err)
		_, err = svc.Enable(context.Background(), user.ID, staleCode)
		if err == nil {
			t.Skip("codes for both secrets collided in this time step")
		}
		assert.ErrorIs(t, err, auth.ErrInvalidMFACode)
	})

	t.Run("already enabled", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, _ := newTestService(t, store)
		enrollAdmin(t, svc, user)

		_, err := svc.IssueSecret(context.Background(), user.ID)
		assert.ErrorIs(t, err, auth.ErrMFAAlreadyEnabled)
	})
}

func TestService_Enable(t *testing.T) {
	t.Parallel()

	t.Run("valid code flips the flag and mints backup codes", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, _ := newTestService(t, store)

		_, codes := enrollAdmin(t, svc, user)
		require.Len(t, codes, 4)
		for _, c := range codes {
			assert.Len(t, c, 10)
		}

		stored := store.user(user.ID)
		assert.True(t, stored.MFAEnabled)
		require.Len(t, stored.MFABackupCodes, 4)
		for i, hash := range stored.MFABackupCodes {
			assert.NotEqual(t, codes[i], hash)
		}
	})

	t.Run("no pending secret", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, _ := newTestService(t, store)

		_, err := svc.Enable(context.Background(), user.ID, "123456")
		assert.ErrorIs(t, err, auth.ErrMFASecretMissing)
	})

	t.Run("wrong code leaves mfa disabled", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, _ := newTestService(t, store)

		_, err := svc.IssueEnrollmentSecret(context.Background(), user.ID)
		require.NoError(t, err)
		_, err = svc.Enable(context.Background(), user.ID, "000000")
		assert.ErrorIs(t, err, auth.ErrInvalidMFACode)
		assert.False(t, store.user(user.ID).MFAEnabled)
	})
}

func TestService_Disable(t *testing.T) {
	t.Parallel()

	t.Run("password recheck then full wipe", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, _ := newTestService(t, store)
		enrollAdmin(t, svc, user)

		err := svc.Disable(context.Background(), user.ID, "wrong-pass")
		assert.ErrorIs(t, err, auth.ErrInvalidPassword)
		assert.True(t, store.user(user.ID).MFAEnabled)

		require.NoError(t, svc.Disable(context.Background(), user.ID, "s3cret-pass"))
		stored := store.user(user.ID)
		assert.False(t, stored.MFAEnabled)
		assert.Empty(t, stored.MFASecret)
		assert.Empty(t, stored.MFABackupCodes)
	})

	t.Run("not enabled", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, _ := newTestService(t, store)

		err := svc.Disable(context.Background(), user.ID, "s3cret-pass")
		assert.ErrorIs(t, err, auth.ErrMFANotEnabled)
	})
}

func TestService_VerifyMFA(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*auth.Service, *fakeStorage, auth.User, string, []string, string) {
		t.Helper()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, _ := newTestService(t, store)
		secret, codes := enrollAdmin(t, svc, user)

		res, err := svc.Login(context.Background(), user.Email, "s3cret-pass")
		require.NoError(t, err)
		require.Equal(t, auth.StatusMFARequired, res.Status)
		return svc, store, user, secret, codes, res.ChallengeToken
	}

	t.Run("totp code issues a session", func(t *testing.T) {
		t.Parallel()
		svc, store, user, secret, codes, challenge := setup(t)

		code, err := totp.GenerateCode(secret)
		require.NoError(t, err)
		verification, err := svc.VerifyMFA(context.Background(), challenge, code, "")
		require.NoError(t, err)
		assert.Equal(t, user.ID, verification.User.ID)
		assert.NotEmpty(t, verification.AccessToken)
		assert.NotEmpty(t, verification.RefreshToken)
		assert.Equal(t, len(codes), verification.BackupCodesRemaining)
		assert.Equal(t, 1, store.tokenCount())
	})

	t.Run("backup code is consumed exactly once", func(t *testing.T) {
		t.Parallel()
		svc, store, user, _, codes, challenge := setup(t)

		verification, err := svc.VerifyMFA(context.Background(), challenge, "", "  "+strings.ToUpper(codes[0])+" ")
		require.NoError(t, err)
		assert.Equal(t, len(codes)-1, verification.BackupCodesRemaining)
		assert.Len(t, store.user(user.ID).MFABackupCodes, len(codes)-1)

		// The same code cannot be spent twice.
		res, err := svc.Login(context.Background(), user.Email, "s3cret-pass")
		require.NoError(t, err)
		_, err = svc.VerifyMFA(context.Background(), res.ChallengeToken, "", codes[0])
		assert.ErrorIs(t, err, auth.ErrInvalidMFACode)
	})

	t.Run("wrong code", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _, _, challenge := setup(t)

		_, err := svc.VerifyMFA(context.Background(), challenge, "000000", "")
		assert.ErrorIs(t, err, auth.ErrInvalidMFACode)
	})

	t.Run("bad challenge token", func(t *testing.T) {
		t.Parallel()
		svc, _, _, secret, _, _ := setup(t)

		code, err := totp.GenerateCode(secret)
		require.NoError(t, err)
		_, err = svc.VerifyMFA(context.Background(), "garbage", code, "")
		assert.ErrorIs(t, err, auth.ErrInvalidChallenge)
	})

	t.Run("access token is not a challenge", func(t *testing.T) {
		t.Parallel()
		store := newFakeStorage()
		user := seedUser(t, store, auth.RoleAdmin, true)
		svc, tokens := newTestService(t, store)
		secret, _ := enrollAdmin(t, svc, user)

		access, err := tokens.IssueAccess(user.ID.String(), user.Email, string(auth.RoleAdmin))
		require.NoError(t, err)
		code, err := totp.GenerateCode(secret)
		require.NoError(t, err)
		_, err = svc.VerifyMFA(context.Background(), access, code, "")
		assert.ErrorIs(t, err, auth.ErrInvalidChallenge)
	})

	t.Run("account deactivated after challenge", func(t *testing.T) {
		t.Parallel()
		svc, store, user, secret, _, challenge := setup(t)

		store.mu.Lock()
		store.users[user.ID].IsActive = false
		store.mu.Unlock()

		code, err := totp.GenerateCode(secret)
		require.NoError(t, err)
		_, err = svc.VerifyMFA(context.Background(), challenge, code, "")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("mfa disabled after challenge", func(t *testing.T) {
		t.Parallel()
		svc, _, user, secret, _, challenge := setup(t)

		require.NoError(t, svc.Disable(context.Background(), user.ID, "s3cret-pass"))
		code, err := totp.GenerateCode(secret)
		require.NoError(t, err)
		_, err = svc.VerifyMFA(context.Background(), challenge, code, "")
		assert.ErrorIs(t, err, auth.ErrMFANotEnabled)
	})
}
