package secrets

import "errors"

var (
	ErrMissingMasterSecret = errors.New("secrets: missing master secret")
	ErrEncryptionFailed    = errors.New("secrets: encryption failed")
	ErrDecryptionFailed    = errors.New("secrets: decryption failed")
	ErrInvalidPayload      = errors.New("secrets: invalid encrypted payload")
)
