// Package token issues and validates the signed credentials used by the auth
// flows: short-lived access tokens, 7-day refresh tokens, and minutes-lived
// MFA challenge tokens.
//
// Access and refresh tokens use distinct HMAC-SHA256 signing secrets with
// distinct expirations. MFA challenge tokens share the access secret but carry
// a purpose claim that verification enforces in both directions, so a
// challenge token can never be replayed as an access token and vice versa.
//
// All Verify functions return ErrInvalidToken for malformed, expired, tampered
// or repurposed input; they never panic and expose no detail about why a token
// was rejected.
package token
