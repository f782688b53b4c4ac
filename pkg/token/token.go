package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// challengePurpose tags MFA challenge tokens so they can never be replayed as
// access tokens even though both are signed with the access secret.
const challengePurpose = "mfa_challenge"

// AccessClaims identify an authenticated session.
type AccessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	// Purpose stays empty for access tokens; a non-empty value marks a token
	// minted for a different flow and must be rejected.
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the account identity; everything else is looked up
// in the credential store on use.
type RefreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// ChallengeClaims represent "password verified, second factor pending". They
// exist only as a bearer credential; no server-side record is kept.
type ChallengeClaims struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Service issues and verifies the three token kinds used by the auth flows.
// Access and refresh tokens are signed with distinct secrets, so a leaked
// access secret does not compromise refresh-token integrity and vice versa.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	challengeTTL  time.Duration
}

// New creates a Service from the given configuration.
func New(cfg Config) (*Service, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSigningSecret
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrSameSigningSecrets
	}

	return &Service{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		challengeTTL:  cfg.ChallengeTTL,
	}, nil
}

// RefreshTTL reports the configured refresh-token lifetime so callers can
// persist matching store-side expirations.
func (s *Service) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssueAccess mints a short-lived session token carrying identity and role.
func (s *Service) IssueAccess(userID, email, role string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return s.sign(claims, s.accessSecret)
}

// IssueRefresh mints a long-lived refresh token for the account.
func (s *Service) IssueRefresh(userID string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	return s.sign(claims, s.refreshSecret)
}

// IssueMFAChallenge mints the short-lived "second factor pending" credential.
func (s *Service) IssueMFAChallenge(userID, email string) (string, error) {
	now := time.Now()
	claims := ChallengeClaims{
		UserID:  userID,
		Email:   email,
		Purpose: challengePurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.challengeTTL)),
		},
	}
	return s.sign(claims, s.accessSecret)
}

// VerifyAccess validates an access token. Malformed, expired, tampered or
// repurposed tokens all yield ErrInvalidToken; this function never panics and
// callers treat any error as authentication failure.
func (s *Service) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	if claims.Purpose != "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token signature and expiry. Store-side
// existence is the caller's responsibility; deletion there is revocation.
func (s *Service) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenString, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyMFAChallenge validates a challenge token, including its purpose claim.
func (s *Service) VerifyMFAChallenge(tokenString string) (*ChallengeClaims, error) {
	claims := &ChallengeClaims{}
	if err := s.parse(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	if claims.Purpose != challengePurpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) sign(claims jwt.Claims, secret []byte) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", errors.Join(ErrFailedToSign, err)
	}
	return signed, nil
}

func (s *Service) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
