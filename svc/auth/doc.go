// Package auth implements authentication and MFA lifecycle for the
// back-office API: password login, JWT session issuance with persisted
// refresh tokens, and mandatory TOTP enrollment for admin accounts with
// encrypted secrets and single-use backup codes.
//
// The package owns the business rules only; persistence is behind the
// Storage interface and HTTP concerns live in modules/auth.
package auth
