package token

import "errors"

var (
	ErrMissingSigningSecret = errors.New("token: missing signing secret")
	ErrSameSigningSecrets   = errors.New("token: access and refresh secrets must differ")
	ErrFailedToSign         = errors.New("token: failed to sign token")
	ErrInvalidToken         = errors.New("token: invalid or expired token")
)
