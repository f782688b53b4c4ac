// Package redis connects to a Redis server from environment-driven
// configuration, with retry on startup and a health probe for readiness
// endpoints. The client backs the fixed-window rate limiter guarding the auth
// endpoints.
package redis
