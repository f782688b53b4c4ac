package auth

import "errors"

var (
	// ErrNotFound is returned by Storage implementations when no row
	// matches the lookup. Service methods translate it into a
	// domain-specific error before it reaches a caller.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by Storage implementations on unique
	// constraint violations.
	ErrDuplicate = errors.New("record already exists")

	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInactiveAccount       = errors.New("account is inactive")
	ErrUserNotFound          = errors.New("user not found")
	ErrMFAAlreadyEnabled     = errors.New("mfa is already enabled")
	ErrMFANotEnabled         = errors.New("mfa is not enabled")
	ErrMFASecretMissing      = errors.New("mfa secret has not been issued")
	ErrInvalidMFACode        = errors.New("invalid mfa code")
	ErrInvalidChallenge      = errors.New("invalid or expired mfa challenge")
	ErrInvalidRefreshToken   = errors.New("invalid or expired refresh token")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrMFAVerificationFailed = errors.New("mfa verification failed")
	ErrEmailTaken            = errors.New("user with this email already exists")
)
