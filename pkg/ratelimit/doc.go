// Package ratelimit provides a fixed-window request limiter with pluggable
// counter stores and HTTP middleware.
//
// The Redis store shares counters across replicas; the memory store serves
// single-instance deployments and tests. Middleware fails open on store errors
// so a limiter outage never takes the API down with it.
package ratelimit
