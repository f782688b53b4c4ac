// Package postgres is the pgx-backed credential store: users with their
// MFA state and persisted refresh tokens. Schema lives in the embedded
// goose migrations under migrations/.
package postgres
