package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role controls access to the back-office surface. Admins are the only
// role subject to mandatory MFA.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User is the full account record as stored. MFASecret holds the
// encrypted TOTP secret payload and is never exposed to callers;
// MFABackupCodes holds bcrypt hashes of the one-time recovery codes.
type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	IsActive       bool
	MFAEnabled     bool
	MFASecret      string
	MFABackupCodes []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserView is the serializable projection of a User with all secret
// material stripped.
type UserView struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	IsActive   bool      `json:"isActive"`
	MFAEnabled bool      `json:"mfaEnabled"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// View projects the user into its public representation.
func (u *User) View() UserView {
	return UserView{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsActive:   u.IsActive,
		MFAEnabled: u.MFAEnabled,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// NormalizeEmail lowercases and trims an email address so lookups are
// case-insensitive regardless of how the client typed it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
