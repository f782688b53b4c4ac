package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/invoicedesk/pkg/pg"
	"github.com/dmitrymomot/invoicedesk/svc/auth"
)

// Store implements auth.Storage on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, is_active,
	mfa_enabled, COALESCE(mfa_secret, ''), mfa_backup_codes, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*auth.User, error) {
	var u auth.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.MFAEnabled, &u.MFASecret, &u.MFABackupCodes, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan user: %w", err)
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Store) UpdateUserMFA(ctx context.Context, id uuid.UUID, update auth.MFAUpdate) error {
	codes := update.BackupCodes
	if codes == nil {
		codes = []string{}
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET mfa_enabled = $2,
			mfa_secret = NULLIF($3, ''),
			mfa_backup_codes = $4,
			updated_at = now()
		WHERE id = $1`,
		id, update.Enabled, update.Secret, codes)
	if err != nil {
		return fmt.Errorf("postgres: update user mfa: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("postgres: update user password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)`,
		token.Token, token.UserID, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("postgres: create refresh token: %w", err)
	}
	return nil
}

func (s *Store) RefreshTokenByValue(ctx context.Context, value string) (*auth.RefreshToken, *auth.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT rt.token, rt.user_id, rt.expires_at, rt.created_at,
			u.id, u.name, u.email, u.password_hash, u.role, u.is_active,
			u.mfa_enabled, COALESCE(u.mfa_secret, ''), u.mfa_backup_codes,
			u.created_at, u.updated_at
		FROM refresh_tokens rt
		JOIN users u ON u.id = rt.user_id
		WHERE rt.token = $1`, value)

	var rt auth.RefreshToken
	var u auth.User
	err := row.Scan(
		&rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt,
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.MFAEnabled, &u.MFASecret, &u.MFABackupCodes, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, nil, auth.ErrNotFound
		}
		return nil, nil, fmt.Errorf("postgres: lookup refresh token: %w", err)
	}
	return &rt, &u, nil
}

func (s *Store) DeleteRefreshToken(ctx context.Context, value string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE token = $1`, value)
	if err != nil {
		return fmt.Errorf("postgres: delete refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("postgres: delete user refresh tokens: %w", err)
	}
	return nil
}
