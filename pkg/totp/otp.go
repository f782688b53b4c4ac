package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultDigits is the standard 6-digit TOTP code length.
	DefaultDigits = 6
	// Period is the fixed 30-second time step (RFC 6238 standard).
	Period = 30
	// DefaultAlgorithm is HMAC-SHA1 (RFC 6238 standard).
	DefaultAlgorithm = "SHA1"
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	otpFormatRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, DefaultDigits))
)

// KeyURIParams contains the parameters for otpauth URI generation.
type KeyURIParams struct {
	Secret      string // Base32-encoded TOTP secret key (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
}

// Validate ensures all required URI parameters are present and valid.
func (p KeyURIParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GenerateSecretKey generates a new Base32-encoded secret key for TOTP.
// The secret is 160 bits (RFC 4226 recommendation for cryptographic strength).
func GenerateSecretKey() (string, error) {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// KeyURI creates a properly encoded otpauth:// URI for use with authenticator
// apps. The URI format follows the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func KeyURI(params KeyURIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", DefaultAlgorithm)
	query.Set("digits", fmt.Sprintf("%d", DefaultDigits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// Validate checks the candidate code against the secret for the current time.
// The window argument widens acceptance to the current 30-second step plus or
// minus that many steps, tolerating clock drift between server and device.
// Validation is pure given (secret, code, now); it carries no replay state.
func Validate(secret, code string, window int) (bool, error) {
	return ValidateAt(secret, code, window, time.Now())
}

// ValidateAt is Validate pinned to an arbitrary point in time.
func ValidateAt(secret, code string, window int, at time.Time) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !otpFormatRegex.MatchString(code) {
		return false, ErrInvalidOTP
	}
	if window < 0 {
		window = 0
	}

	counter := at.Unix() / int64(Period)

	matched := 0
	for i := -window; i <= window; i++ {
		candidate := formatCode(GenerateHOTP(key, counter+int64(i), DefaultDigits))
		// Constant-structure comparison across the whole window: every step is
		// checked regardless of earlier matches.
		matched |= subtle.ConstantTimeCompare([]byte(candidate), []byte(code))
	}

	return matched == 1, nil
}

// GenerateCodeAt generates the TOTP code for the 30-second window containing
// the specified time. Useful for tests and for generating codes on behalf of
// a device.
func GenerateCodeAt(secret string, at time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	counter := at.Unix() / int64(Period)
	return formatCode(GenerateHOTP(key, counter, DefaultDigits)), nil
}

// GenerateCode generates the TOTP code for the current 30-second window.
func GenerateCode(secret string) (string, error) {
	return GenerateCodeAt(secret, time.Now())
}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm.
// The algorithm converts a counter value into a numeric code using HMAC-SHA1.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	// Convert counter to big-endian 8-byte array (RFC 4226 requirement)
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter = counter >> 8
	}

	hmacHash := hmac.New(sha1.New, key)
	hmacHash.Write(counterBytes)
	hash := hmacHash.Sum(nil)

	// Dynamic truncation (RFC 4226): use last 4 bits as offset into hash
	offset := hash[len(hash)-1] & 0x0f
	// Extract 31-bit value (clear MSB to ensure positive number)
	code := (int(hash[offset]&0x7f) << 24) |
		(int(hash[offset+1]&0xff) << 16) |
		(int(hash[offset+2]&0xff) << 8) |
		(int(hash[offset+3] & 0xff))

	return code % int(math.Pow10(digits))
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !ValidateSecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

func formatCode(code int) string {
	return fmt.Sprintf("%0*d", DefaultDigits, code)
}

// GenerateEncodedEncryptionKey generates a random 32-byte key and returns it
// base64-encoded, suitable for seeding the secret-cipher configuration.
func GenerateEncodedEncryptionKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
