package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/invoicedesk/pkg/pg"
	"github.com/dmitrymomot/invoicedesk/svc/auth"
)

func (s *Store) CreateUser(ctx context.Context, user *auth.User) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrDuplicate
		}
		return fmt.Errorf("postgres: create user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, filter auth.UserFilter) ([]auth.User, int64, error) {
	where := []string{"TRUE"}
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s)", p, p))
	}
	if filter.Role != "" {
		where = append(where, "role = "+arg(string(filter.Role)))
	}
	if filter.IsActive != nil {
		where = append(where, "is_active = "+arg(*filter.IsActive))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres: count users: %w", err)
	}

	limit := arg(filter.PerPage)
	offset := arg((filter.Page - 1) * filter.PerPage)
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+cond+`
		ORDER BY created_at DESC
		LIMIT `+limit+` OFFSET `+offset, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: list users: %w", err)
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: list users: %w", err)
	}
	return users, total, nil
}

func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, update auth.UserUpdate) error {
	set := []string{"updated_at = now()"}
	args := []any{id}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if update.Name != nil {
		set = append(set, "name = "+arg(*update.Name))
	}
	if update.Email != nil {
		set = append(set, "email = "+arg(*update.Email))
	}
	if update.IsActive != nil {
		set = append(set, "is_active = "+arg(*update.IsActive))
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET `+strings.Join(set, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrDuplicate
		}
		return fmt.Errorf("postgres: update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}
