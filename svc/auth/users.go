package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CreateUserInput is the payload for account creation by an admin.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// CreateUser provisions a new account with a hashed password. Accounts
// start active with MFA disabled; admins go through forced enrollment
// on their first login.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*UserView, error) {
	if input.Role == "" {
		input.Role = RoleUser
	}
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user := &User{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        NormalizeEmail(input.Email),
		PasswordHash: hash,
		Role:         input.Role,
		IsActive:     true,
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("auth: create user: %w", err)
	}
	view := user.View()
	return &view, nil
}

// Users lists accounts matching the filter together with the total
// match count for pagination.
func (s *Service) Users(ctx context.Context, filter UserFilter) ([]UserView, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 10
	}
	users, total, err := s.storage.ListUsers(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("auth: list users: %w", err)
	}
	views := make([]UserView, len(users))
	for i := range users {
		views[i] = users[i].View()
	}
	return views, total, nil
}

// UpdateUser applies a partial account update and returns the fresh
// view.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, update UserUpdate) (*UserView, error) {
	if update.Email != nil {
		normalized := NormalizeEmail(*update.Email)
		update.Email = &normalized
	}
	if err := s.storage.UpdateUser(ctx, id, update); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, ErrDuplicate):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("auth: update user: %w", err)
	}
	return s.Profile(ctx, id)
}

// SetUserStatus activates or deactivates an account. Deactivation also
// revokes every refresh token so live sessions cannot outlast it.
func (s *Service) SetUserStatus(ctx context.Context, id uuid.UUID, active bool) (*UserView, error) {
	view, err := s.UpdateUser(ctx, id, UserUpdate{IsActive: &active})
	if err != nil {
		return nil, err
	}
	if !active {
		if err := s.storage.DeleteUserRefreshTokens(ctx, id); err != nil {
			return nil, fmt.Errorf("auth: revoke sessions: %w", err)
		}
	}
	return view, nil
}

// DeleteUser removes an account. Refresh tokens go with it through the
// store's cascade.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("auth: delete user: %w", err)
	}
	return nil
}
