// Package auth mounts the authentication HTTP surface: login with
// admin MFA enforcement, challenge verification, token refresh, logout,
// profile, and the MFA enrollment and management endpoints.
//
// Responses use a uniform envelope with a status field plus either a
// data payload or a human-readable message.
package auth
