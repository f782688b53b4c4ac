package totp_test

import (
	"testing"
	"time"

	"github.com/dmitrymomot/invoicedesk/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecretKey(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Regexp(t, totp.ValidateSecretKeyRegex, secret)
}

func TestKeyURI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		params  totp.KeyURIParams
		want    string
		wantErr error
	}{
		{
			name: "Basic URI",
			params: totp.KeyURIParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "admin@example.com",
				Issuer:      "InvoiceDesk",
			},
			want: "otpauth://totp/InvoiceDesk:admin@example.com?algorithm=SHA1&digits=6&issuer=InvoiceDesk&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name: "URI with special characters",
			params: totp.KeyURIParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "admin+tax@example.com",
				Issuer:      "Invoice & Desk",
			},
			want: "otpauth://totp/Invoice%20&%20Desk:admin+tax@example.com?algorithm=SHA1&digits=6&issuer=Invoice+%26+Desk&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name: "Missing secret",
			params: totp.KeyURIParams{
				AccountName: "admin@example.com",
				Issuer:      "InvoiceDesk",
			},
			wantErr: totp.ErrMissingSecret,
		},
		{
			name: "Invalid secret",
			params: totp.KeyURIParams{
				Secret:      "not-base32!",
				AccountName: "admin@example.com",
				Issuer:      "InvoiceDesk",
			},
			wantErr: totp.ErrInvalidSecret,
		},
		{
			name: "Missing account name",
			params: totp.KeyURIParams{
				Secret: "ABCDEFGHIJKLMNOP",
				Issuer: "InvoiceDesk",
			},
			wantErr: totp.ErrMissingAccountName,
		},
		{
			name: "Missing issuer",
			params: totp.KeyURIParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "admin@example.com",
			},
			wantErr: totp.ErrMissingIssuer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.KeyURI(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	validSecret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	validOTP, err := totp.GenerateCode(validSecret)
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  string
		otp     string
		wantErr bool
		result  bool
	}{
		{name: "Invalid base32 secret", secret: "invalid-base32!@#$", otp: "123456", wantErr: true},
		{name: "Invalid OTP length", secret: "ABCDEFGHIJKLMNOP", otp: "12345", wantErr: true},
		{name: "Invalid OTP characters", secret: "ABCDEFGHIJKLMNOP", otp: "12345a", wantErr: true},
		{name: "Empty secret", secret: "", otp: "123456", wantErr: true},
		{name: "Empty OTP", secret: "ABCDEFGHIJKLMNOP", otp: "", wantErr: true},
		{name: "Valid OTP", secret: validSecret, otp: validOTP, result: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := totp.Validate(tt.secret, tt.otp, 1)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestValidateWindowBounds(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	// Pin the reference time to a step boundary so offsets translate exactly
	// into step counts.
	base := time.Unix(30*56666666, 0)
	code, err := totp.GenerateCodeAt(secret, base)
	require.NoError(t, err)

	tests := []struct {
		name   string
		window int
		offset time.Duration
		want   bool
	}{
		{name: "window 0 same step", window: 0, offset: 0, want: true},
		{name: "window 0 next step rejects", window: 0, offset: 30 * time.Second, want: false},
		{name: "window 1 previous step", window: 1, offset: -30 * time.Second, want: true},
		{name: "window 1 next step", window: 1, offset: 30 * time.Second, want: true},
		{name: "window 1 two steps out rejects", window: 1, offset: 60 * time.Second, want: false},
		{name: "window 2 two steps out", window: 2, offset: -60 * time.Second, want: true},
		{name: "window 2 three steps out rejects", window: 2, offset: 90 * time.Second, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := totp.ValidateAt(secret, code, tt.window, base.Add(tt.offset))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestGenerateHOTP(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		counter int64
		digits  int
	}{
		{name: "6 digits counter 0", counter: 0, digits: 6},
		{name: "8 digits counter 1", counter: 1, digits: 8},
	}

	key := []byte("12345678901234567890")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code := totp.GenerateHOTP(key, tt.counter, tt.digits)
			assert.GreaterOrEqual(t, code, 0)
			assert.Less(t, code, int(pow10(tt.digits)))
		})
	}
}

// RFC 4226 Appendix D reference values for the standard 20-byte ASCII key.
func TestGenerateHOTPReferenceVectors(t *testing.T) {
	t.Parallel()
	key := []byte("12345678901234567890")
	want := []int{755224, 287082, 359152, 969429, 338314, 254676, 287922, 162583, 399871, 520489}

	for counter, expected := range want {
		assert.Equal(t, expected, totp.GenerateHOTP(key, int64(counter), 6), "counter %d", counter)
	}
}

func pow10(n int) int64 {
	result := int64(1)
	for range n {
		result *= 10
	}
	return result
}
