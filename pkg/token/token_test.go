package token_test

import (
	"testing"
	"time"

	"github.com/dmitrymomot/invoicedesk/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() token.Config {
	return token.Config{
		AccessSecret:  "access-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret-for-tests",
		RefreshTTL:    7 * 24 * time.Hour,
		ChallengeTTL:  5 * time.Minute,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*token.Config)
		wantErr error
	}{
		{name: "valid config", mutate: func(c *token.Config) {}},
		{
			name:    "missing access secret",
			mutate:  func(c *token.Config) { c.AccessSecret = "" },
			wantErr: token.ErrMissingSigningSecret,
		},
		{
			name:    "missing refresh secret",
			mutate:  func(c *token.Config) { c.RefreshSecret = "" },
			wantErr: token.ErrMissingSigningSecret,
		},
		{
			name:    "identical secrets",
			mutate:  func(c *token.Config) { c.RefreshSecret = c.AccessSecret },
			wantErr: token.ErrSameSigningSecrets,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			tt.mutate(&cfg)

			svc, err := token.New(cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()
	svc, err := token.New(testConfig())
	require.NoError(t, err)

	signed, err := svc.IssueAccess("user-1", "admin@example.com", "ADMIN")
	require.NoError(t, err)

	claims, err := svc.VerifyAccess(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()
	svc, err := token.New(testConfig())
	require.NoError(t, err)

	signed, err := svc.IssueRefresh("user-1")
	require.NoError(t, err)

	claims, err := svc.VerifyRefresh(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestChallengeTokenRoundTrip(t *testing.T) {
	t.Parallel()
	svc, err := token.New(testConfig())
	require.NoError(t, err)

	signed, err := svc.IssueMFAChallenge("user-1", "admin@example.com")
	require.NoError(t, err)

	claims, err := svc.VerifyMFAChallenge(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	t.Parallel()
	svc, err := token.New(testConfig())
	require.NoError(t, err)

	access, err := svc.IssueAccess("user-1", "admin@example.com", "ADMIN")
	require.NoError(t, err)
	refresh, err := svc.IssueRefresh("user-1")
	require.NoError(t, err)
	challenge, err := svc.IssueMFAChallenge("user-1", "admin@example.com")
	require.NoError(t, err)

	t.Run("challenge never verifies as access", func(t *testing.T) {
		claims, err := svc.VerifyAccess(challenge)
		assert.ErrorIs(t, err, token.ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("access never verifies as challenge", func(t *testing.T) {
		claims, err := svc.VerifyMFAChallenge(access)
		assert.ErrorIs(t, err, token.ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("access never verifies as refresh", func(t *testing.T) {
		claims, err := svc.VerifyRefresh(access)
		assert.ErrorIs(t, err, token.ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("refresh never verifies as access", func(t *testing.T) {
		claims, err := svc.VerifyAccess(refresh)
		assert.ErrorIs(t, err, token.ErrInvalidToken)
		assert.Nil(t, claims)
	})
}

func TestVerifyRejectsMalformedInput(t *testing.T) {
	t.Parallel()
	svc, err := token.New(testConfig())
	require.NoError(t, err)

	for _, input := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJub25lIn0.eyJ1c2VySWQiOiJ4In0."} {
		_, err := svc.VerifyAccess(input)
		assert.ErrorIs(t, err, token.ErrInvalidToken, "input %q", input)

		_, err = svc.VerifyRefresh(input)
		assert.ErrorIs(t, err, token.ErrInvalidToken, "input %q", input)

		_, err = svc.VerifyMFAChallenge(input)
		assert.ErrorIs(t, err, token.ErrInvalidToken, "input %q", input)
	}
}

func TestVerifyRejectsExpiredTokens(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.AccessTTL = -time.Minute
	cfg.RefreshTTL = -time.Minute
	cfg.ChallengeTTL = -time.Minute

	svc, err := token.New(cfg)
	require.NoError(t, err)

	access, err := svc.IssueAccess("user-1", "admin@example.com", "ADMIN")
	require.NoError(t, err)
	refresh, err := svc.IssueRefresh("user-1")
	require.NoError(t, err)
	challenge, err := svc.IssueMFAChallenge("user-1", "admin@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(access)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = svc.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = svc.VerifyMFAChallenge(challenge)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	t.Parallel()
	svc, err := token.New(testConfig())
	require.NoError(t, err)

	signed, err := svc.IssueAccess("user-1", "admin@example.com", "ADMIN")
	require.NoError(t, err)

	tampered := signed[:len(signed)-2] + "xx"
	_, err = svc.VerifyAccess(tampered)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}
