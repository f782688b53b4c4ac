package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/invoicedesk/pkg/backupcodes"
	"github.com/dmitrymomot/invoicedesk/pkg/secrets"
	"github.com/dmitrymomot/invoicedesk/pkg/token"
)

// Config carries the MFA policy knobs of the auth service.
type Config struct {
	// Issuer is the label shown in authenticator apps.
	Issuer string `env:"MFA_ISSUER" envDefault:"InvoiceDesk"`
	// EncryptionKey is the master key for TOTP secret encryption at rest.
	EncryptionKey string `env:"MFA_ENCRYPTION_KEY,required"`
	// TOTPWindow is the number of 30-second steps accepted on either
	// side of the current one to absorb clock drift.
	TOTPWindow int `env:"MFA_TOTP_WINDOW" envDefault:"1"`
	// BackupCodesCount is how many recovery codes are issued per enrollment.
	BackupCodesCount int `env:"MFA_BACKUP_CODES_COUNT" envDefault:"8"`
	// QRCodeSize is the pixel width of generated enrollment QR codes.
	QRCodeSize int `env:"MFA_QR_CODE_SIZE" envDefault:"256"`
}

// LoginStatus tells the client what the next step after a password
// check is.
type LoginStatus string

const (
	// StatusSessionIssued means credentials were sufficient and tokens
	// are present in the result.
	StatusSessionIssued LoginStatus = "session_issued"
	// StatusMFARequired means a challenge token was issued and a second
	// factor must be presented.
	StatusMFARequired LoginStatus = "mfa_required"
	// StatusEnrollmentRequired means the account is an admin without
	// MFA and must enroll before a session can be issued.
	StatusEnrollmentRequired LoginStatus = "mfa_enrollment_required"
)

// Session is a fully authenticated pair of tokens plus the user they
// belong to.
type Session struct {
	User         UserView
	AccessToken  string
	RefreshToken string
}

// LoginResult is the outcome of a password login. Token fields are
// populated according to Status.
type LoginResult struct {
	Status         LoginStatus
	User           UserView
	AccessToken    string
	RefreshToken   string
	ChallengeToken string
}

// MFAVerification is a session issued through the second factor,
// annotated with how many backup codes the account still holds.
type MFAVerification struct {
	Session
	BackupCodesRemaining int
}

// Service orchestrates authentication, session issuance and MFA
// lifecycle on top of a Storage implementation.
type Service struct {
	storage Storage
	tokens  *token.Service
	cipher  *secrets.Cipher
	codes   *backupcodes.Manager
	cfg     Config
	log     *slog.Logger
}

// New wires an auth service. The TOTP secret cipher is derived from
// cfg.EncryptionKey.
func New(storage Storage, tokens *token.Service, cfg Config, log *slog.Logger) (*Service, error) {
	if storage == nil {
		return nil, errors.New("auth: storage is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token service is required")
	}
	if log == nil {
		log = slog.Default()
	}
	cipher, err := secrets.New(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("auth: init secret cipher: %w", err)
	}
	codes, err := backupcodes.New(0)
	if err != nil {
		return nil, fmt.Errorf("auth: init backup codes: %w", err)
	}
	if cfg.TOTPWindow < 0 {
		return nil, errors.New("auth: totp window must not be negative")
	}
	if cfg.BackupCodesCount <= 0 {
		cfg.BackupCodesCount = 8
	}
	if cfg.QRCodeSize <= 0 {
		cfg.QRCodeSize = 256
	}
	return &Service{
		storage: storage,
		tokens:  tokens,
		cipher:  cipher,
		codes:   codes,
		cfg:     cfg,
		log:     log,
	}, nil
}

// Login checks the password and decides the next step. Non-admins get a
// session straight away; admins are routed to MFA verification or, when
// not yet enrolled, to enrollment. Unknown emails, wrong passwords and
// inactive accounts are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.storage.UserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: lookup user by email: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !ComparePassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if user.Role == RoleAdmin {
		if !user.MFAEnabled {
			return &LoginResult{
				Status: StatusEnrollmentRequired,
				User:   user.View(),
			}, nil
		}
		challenge, err := s.tokens.IssueMFAChallenge(user.ID.String(), user.Email)
		if err != nil {
			return nil, fmt.Errorf("auth: issue mfa challenge: %w", err)
		}
		return &LoginResult{
			Status:         StatusMFARequired,
			User:           user.View(),
			ChallengeToken: challenge,
		}, nil
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Status:       StatusSessionIssued,
		User:         session.User,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}, nil
}

// Refresh exchanges a valid, persisted refresh token for a fresh access
// token. The refresh token stays valid until logout or expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if _, err := s.tokens.VerifyRefresh(refreshToken); err != nil {
		return "", ErrInvalidRefreshToken
	}
	stored, user, err := s.storage.RefreshTokenByValue(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("auth: lookup refresh token: %w", err)
	}
	if time.Now().After(stored.ExpiresAt) {
		return "", ErrInvalidRefreshToken
	}
	if !user.IsActive {
		return "", ErrInvalidRefreshToken
	}
	access, err := s.tokens.IssueAccess(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("auth: issue access token: %w", err)
	}
	return access, nil
}

// Logout revokes the given refresh token. Unknown or empty tokens are
// ignored so logout is idempotent.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.storage.DeleteRefreshToken(ctx, refreshToken); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("auth: delete refresh token: %w", err)
	}
	return nil
}

// Profile returns the public view of the given account.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*UserView, error) {
	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: lookup user: %w", err)
	}
	view := user.View()
	return &view, nil
}

// ChangePassword replaces the account password and revokes every
// persisted refresh token so all other sessions die with the old
// password.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("auth: lookup user: %w", err)
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	if err := s.storage.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("auth: update password: %w", err)
	}
	if err := s.storage.DeleteUserRefreshTokens(ctx, user.ID); err != nil {
		return fmt.Errorf("auth: revoke sessions: %w", err)
	}
	return nil
}

// issueSession mints an access and refresh token pair and persists the
// refresh token with its expiry.
func (s *Service) issueSession(ctx context.Context, user *User) (*Session, error) {
	access, err := s.tokens.IssueAccess(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth: issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("auth: issue refresh token: %w", err)
	}
	if err := s.storage.CreateRefreshToken(ctx, RefreshToken{
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
	}); err != nil {
		return nil, fmt.Errorf("auth: persist refresh token: %w", err)
	}
	return &Session{
		User:         user.View(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
