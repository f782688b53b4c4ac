package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// NonceSize is the GCM nonce length in bytes (96 bits).
	NonceSize = 12

	// segmentDelimiter joins the nonce, ciphertext and auth tag segments
	// in the persisted payload format.
	segmentDelimiter = ":"
)

// Cipher encrypts and decrypts short secrets (TOTP keys) for storage at rest.
// The symmetric key is derived deterministically from a configured master
// secret, so no separate key material has to be provisioned or rotated in
// lockstep with the config.
type Cipher struct {
	key []byte
}

// New creates a Cipher from a master secret. The AES-256 key is the SHA-256
// digest of the master secret, which maps secrets of any length onto a
// fixed-size key.
func New(masterSecret string) (*Cipher, error) {
	if masterSecret == "" {
		return nil, ErrMissingMasterSecret
	}
	key := sha256.Sum256([]byte(masterSecret))
	return &Cipher{key: key[:]}, nil
}

// Encrypt seals the plaintext with AES-256-GCM under a fresh random nonce and
// returns the payload as "<nonce-hex>:<ciphertext-hex>:<tag-hex>". Each
// segment is hex-encoded independently so the triple stays self-describing.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	aesGCM, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	sealed := aesGCM.Seal(nil, nonce, []byte(plaintext), nil)

	// GCM appends the 16-byte auth tag to the ciphertext; split it back out
	// so the stored payload keeps the tag as its own segment.
	tagOffset := len(sealed) - aesGCM.Overhead()
	ciphertext, tag := sealed[:tagOffset], sealed[tagOffset:]

	return strings.Join([]string{
		hex.EncodeToString(nonce),
		hex.EncodeToString(ciphertext),
		hex.EncodeToString(tag),
	}, segmentDelimiter), nil
}

// Decrypt opens a payload produced by Encrypt. Empty input is passed through
// as an empty string without error, covering records that have no secret yet.
// Any parse or authentication failure returns an error and never partial
// plaintext.
func (c *Cipher) Decrypt(payload string) (string, error) {
	if payload == "" {
		return "", nil
	}

	parts := strings.Split(payload, segmentDelimiter)
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 segments, got %d", ErrInvalidPayload, len(parts))
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", errors.Join(ErrInvalidPayload, err)
	}
	if len(nonce) != NonceSize {
		return "", fmt.Errorf("%w: invalid nonce length %d", ErrInvalidPayload, len(nonce))
	}

	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", errors.Join(ErrInvalidPayload, err)
	}

	tag, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", errors.Join(ErrInvalidPayload, err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	aesGCM, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	plaintext, err := aesGCM.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	return string(plaintext), nil
}
