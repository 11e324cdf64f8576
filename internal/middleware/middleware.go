// Package middleware holds the global and route-level Echo middleware:
// Clerk authentication and role gating, request ids, request-scoped logging,
// New Relic tracing, rate limiting, CORS, panic recovery and the global error
// handler.
package middleware
