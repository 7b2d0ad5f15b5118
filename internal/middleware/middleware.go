// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as request logging, CORS, rate limiting, metrics
// and panic recovery.
package middleware
