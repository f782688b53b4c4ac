// Package pg bootstraps the PostgreSQL layer: pooled connectivity via pgx/v5,
// schema migrations via goose/v3, a health probe, and error classification
// helpers.
//
// Connect opens a *pgxpool.Pool from an environment-driven Config, retrying
// with a growing backoff until the database is reachable. Migrate runs goose
// migrations over the same pool before the service starts serving traffic.
// IsNotFoundError and IsDuplicateKeyError keep error classification out of
// business logic.
package pg
