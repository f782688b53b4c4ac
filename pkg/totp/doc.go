// Package totp implements Time-based One-Time Passwords per RFC 6238 with a
// fixed 30-second step and a configurable verification window.
//
// The package covers secret key creation (GenerateSecretKey), otpauth URI
// construction compatible with Google Authenticator and 1Password (KeyURI),
// and code generation/validation (GenerateCode, Validate). Validation is pure
// given the secret, the candidate code and the clock; replay protection, if
// needed, belongs to the caller.
//
// The window argument of Validate widens acceptance to the current step plus
// or minus that many 30-second steps. A window of 1 accepts the previous,
// current and next codes, which tolerates typical clock drift between server
// and authenticator device.
//
// Encryption of secrets at rest lives in pkg/secrets; QR rendering of the
// provisioning URI lives in pkg/qrcode.
package totp
