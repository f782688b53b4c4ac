package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/invoicedesk/pkg/qrcode"
	"github.com/dmitrymomot/invoicedesk/pkg/totp"
)

// EnrollmentSecret is the material a client needs to register an
// authenticator app: the raw base32 secret for manual entry, the
// otpauth URI and a ready-to-embed QR code data URL.
type EnrollmentSecret struct {
	Secret        string
	OTPAuthURL    string
	QRCodeDataURL string
}

// VerifyMFA completes an admin login by checking the second factor
// against the challenge issued at password time. Backup codes are tried
// first; a consumed code is removed before the session is issued. Code
// and backupCode are alternatives, at least one must be present.
func (s *Service) VerifyMFA(ctx context.Context, challengeToken, code, backupCode string) (*MFAVerification, error) {
	claims, err := s.tokens.VerifyMFAChallenge(challengeToken)
	if err != nil {
		return nil, ErrInvalidChallenge
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidChallenge
	}
	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: lookup user: %w", err)
	}
	if !user.IsActive || user.Role != RoleAdmin {
		return nil, ErrUserNotFound
	}
	if !user.MFAEnabled || user.MFASecret == "" {
		return nil, ErrMFANotEnabled
	}

	matched := false
	remaining := user.MFABackupCodes
	if backupCode != "" {
		matched, remaining = s.codes.Consume(backupCode, user.MFABackupCodes)
	}
	if !matched && code != "" {
		secret, err := s.cipher.Decrypt(user.MFASecret)
		if err != nil {
			s.log.ErrorContext(ctx, "failed to decrypt mfa secret",
				slog.String("user_id", user.ID.String()), slog.Any("error", err))
			return nil, ErrMFAVerificationFailed
		}
		ok, err := totp.Validate(secret, code, s.cfg.TOTPWindow)
		if err == nil && ok {
			matched = true
		}
	}
	if !matched {
		return nil, ErrInvalidMFACode
	}

	if len(remaining) != len(user.MFABackupCodes) {
		if err := s.storage.UpdateUserMFA(ctx, user.ID, MFAUpdate{
			Enabled:     true,
			Secret:      user.MFASecret,
			BackupCodes: remaining,
		}); err != nil {
			return nil, fmt.Errorf("auth: consume backup code: %w", err)
		}
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &MFAVerification{
		Session:              *session,
		BackupCodesRemaining: len(remaining),
	}, nil
}

// IssueEnrollmentSecret returns the TOTP secret a not-yet-enrolled
// admin must register. A pending secret from an earlier attempt is
// reused so the client can safely retry the step; a new one is
// generated and persisted otherwise.
func (s *Service) IssueEnrollmentSecret(ctx context.Context, userID uuid.UUID) (*EnrollmentSecret, error) {
	user, err := s.loadAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.MFAEnabled {
		return nil, ErrMFAAlreadyEnabled
	}

	var secret string
	if user.MFASecret != "" {
		secret, err = s.cipher.Decrypt(user.MFASecret)
		if err != nil {
			return nil, fmt.Errorf("auth: decrypt pending mfa secret: %w", err)
		}
	} else {
		secret, err = totp.GenerateSecretKey()
		if err != nil {
			return nil, fmt.Errorf("auth: generate mfa secret: %w", err)
		}
		encrypted, err := s.cipher.Encrypt(secret)
		if err != nil {
			return nil, fmt.Errorf("auth: encrypt mfa secret: %w", err)
		}
		if err := s.storage.UpdateUserMFA(ctx, user.ID, MFAUpdate{
			Enabled:     false,
			Secret:      encrypted,
			BackupCodes: nil,
		}); err != nil {
			return nil, fmt.Errorf("auth: persist pending mfa secret: %w", err)
		}
	}
	return s.enrollmentMaterial(user, secret)
}

// IssueSecret rotates the TOTP secret for an already authenticated
// admin who has not finished enabling MFA. Unlike enrollment it always
// generates a fresh secret, discarding any pending one.
func (s *Service) IssueSecret(ctx context.Context, userID uuid.UUID) (*EnrollmentSecret, error) {
	user, err := s.loadAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.MFAEnabled {
		return nil, ErrMFAAlreadyEnabled
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return nil, fmt.Errorf("auth: generate mfa secret: %w", err)
	}
	encrypted, err := s.cipher.Encrypt(secret)
	if err != nil {
		return nil, fmt.Errorf("auth: encrypt mfa secret: %w", err)
	}
	if err := s.storage.UpdateUserMFA(ctx, user.ID, MFAUpdate{
		Enabled:     false,
		Secret:      encrypted,
		BackupCodes: nil,
	}); err != nil {
		return nil, fmt.Errorf("auth: persist pending mfa secret: %w", err)
	}
	return s.enrollmentMaterial(user, secret)
}

// Enable turns MFA on after proving possession of the pending secret
// with a valid TOTP code. It returns the freshly minted plaintext
// backup codes; this is the only time they are visible.
func (s *Service) Enable(ctx context.Context, userID uuid.UUID, code string) ([]string, error) {
	user, err := s.loadAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.MFAEnabled {
		return nil, ErrMFAAlreadyEnabled
	}
	if user.MFASecret == "" {
		return nil, ErrMFASecretMissing
	}

	secret, err := s.cipher.Decrypt(user.MFASecret)
	if err != nil {
		return nil, fmt.Errorf("auth: decrypt pending mfa secret: %w", err)
	}
	ok, err := totp.Validate(secret, code, s.cfg.TOTPWindow)
	if err != nil || !ok {
		return nil, ErrInvalidMFACode
	}

	plaintext, err := s.codes.Generate(s.cfg.BackupCodesCount)
	if err != nil {
		return nil, fmt.Errorf("auth: generate backup codes: %w", err)
	}
	hashes, err := s.codes.HashAll(plaintext)
	if err != nil {
		return nil, fmt.Errorf("auth: hash backup codes: %w", err)
	}
	if err := s.storage.UpdateUserMFA(ctx, user.ID, MFAUpdate{
		Enabled:     true,
		Secret:      user.MFASecret,
		BackupCodes: hashes,
	}); err != nil {
		return nil, fmt.Errorf("auth: enable mfa: %w", err)
	}
	return plaintext, nil
}

// Disable turns MFA off after a fresh password check and wipes the
// secret and remaining backup codes.
func (s *Service) Disable(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.loadAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !user.MFAEnabled {
		return ErrMFANotEnabled
	}
	if !ComparePassword(user.PasswordHash, password) {
		return ErrInvalidPassword
	}
	if err := s.storage.UpdateUserMFA(ctx, user.ID, MFAUpdate{
		Enabled:     false,
		Secret:      "",
		BackupCodes: nil,
	}); err != nil {
		return fmt.Errorf("auth: disable mfa: %w", err)
	}
	return nil
}

// loadAdmin fetches an account for an MFA management operation. A
// missing, inactive or non-admin account yields the same error so the
// endpoints leak nothing about why access was denied.
func (s *Service) loadAdmin(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: lookup user: %w", err)
	}
	if !user.IsActive || user.Role != RoleAdmin {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) enrollmentMaterial(user *User, secret string) (*EnrollmentSecret, error) {
	uri, err := totp.KeyURI(totp.KeyURIParams{
		Secret:      secret,
		AccountName: user.Email,
		Issuer:      s.cfg.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("auth: build otpauth uri: %w", err)
	}
	dataURL, err := qrcode.GenerateDataURL(uri, s.cfg.QRCodeSize)
	if err != nil {
		return nil, fmt.Errorf("auth: render qr code: %w", err)
	}
	return &EnrollmentSecret{
		Secret:        secret,
		OTPAuthURL:    uri,
		QRCodeDataURL: dataURL,
	}, nil
}
