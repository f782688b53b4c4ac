package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshToken is a persisted long-lived session credential. The token
// value itself is the opaque signed string handed to the client.
type RefreshToken struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// MFAUpdate is a full rewrite of a user's MFA state. All three fields
// are written on every call so a disable clears the secret and codes in
// the same statement that flips the flag.
type MFAUpdate struct {
	Enabled     bool
	Secret      string
	BackupCodes []string
}

// UserUpdate is a partial account update; nil fields are left as they
// are.
type UserUpdate struct {
	Name     *string
	Email    *string
	IsActive *bool
}

// UserFilter narrows and pages a user listing.
type UserFilter struct {
	Search   string
	Role     Role
	IsActive *bool
	Page     int
	PerPage  int
}

// Storage is the persistence boundary of the auth service. All lookup
// methods return ErrNotFound when no row matches; unique constraint
// violations surface as ErrDuplicate.
type Storage interface {
	CreateUser(ctx context.Context, user *User) error
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]User, int64, error)
	UpdateUser(ctx context.Context, id uuid.UUID, update UserUpdate) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	UpdateUserMFA(ctx context.Context, id uuid.UUID, update MFAUpdate) error
	UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	CreateRefreshToken(ctx context.Context, token RefreshToken) error
	// RefreshTokenByValue returns the stored token together with its
	// owning user so a refresh needs a single round trip.
	RefreshTokenByValue(ctx context.Context, value string) (*RefreshToken, *User, error)
	DeleteRefreshToken(ctx context.Context, value string) error
	DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) error
}
