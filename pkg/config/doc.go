// Package config loads application configuration from environment variables
// into tagged structs.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: the
// default .env file is loaded once per process when present, and each
// configuration type is parsed at most once and cached for the process
// lifetime. MustLoad panics on failure for configuration the application
// cannot start without; Reset clears the cache for tests.
package config
