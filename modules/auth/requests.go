package auth

import (
	"errors"
	"regexp"

	"github.com/google/uuid"
)

var totpCodeRegex = regexp.MustCompile(`^\d{6}$`)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) validate() error {
	if r.Email == "" {
		return errors.New("Email is required")
	}
	if r.Password == "" {
		return errors.New("Password is required")
	}
	return nil
}

type verifyMFARequest struct {
	ChallengeToken string `json:"challengeToken"`
	Token          string `json:"token"`
	BackupCode     string `json:"backupCode"`
}

func (r verifyMFARequest) validate() error {
	if r.ChallengeToken == "" {
		return errors.New("Challenge token is required")
	}
	if r.Token == "" && r.BackupCode == "" {
		return errors.New("Verification token or backup code is required")
	}
	if r.Token != "" && !totpCodeRegex.MatchString(r.Token) {
		return errors.New("Verification token must be 6 digits")
	}
	return nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type enrollSecretRequest struct {
	UserID string `json:"userId"`
}

func (r enrollSecretRequest) userID() (uuid.UUID, error) {
	id, err := uuid.Parse(r.UserID)
	if err != nil {
		return uuid.Nil, errors.New("Valid userId is required")
	}
	return id, nil
}

type enrollEnableRequest struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

func (r enrollEnableRequest) validate() error {
	if !totpCodeRegex.MatchString(r.Token) {
		return errors.New("Verification token must be 6 digits")
	}
	return nil
}

func (r enrollEnableRequest) userID() (uuid.UUID, error) {
	return enrollSecretRequest{UserID: r.UserID}.userID()
}

type enableRequest struct {
	Token string `json:"token"`
}

func (r enableRequest) validate() error {
	if !totpCodeRegex.MatchString(r.Token) {
		return errors.New("Verification token must be 6 digits")
	}
	return nil
}

type disableRequest struct {
	Password string `json:"password"`
}

func (r disableRequest) validate() error {
	if r.Password == "" {
		return errors.New("Password is required")
	}
	return nil
}
