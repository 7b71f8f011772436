// Package middleware holds the echo middleware every request passes
// through: request ids, the request-scoped logger, New Relic tracing,
// request logging, Prometheus metrics, rate limiting, CORS, secure headers,
// panic recovery and the global error handler.
package middleware
