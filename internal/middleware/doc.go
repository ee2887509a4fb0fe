// Package middleware holds the chi middleware of the macro HTTP service.
//
// Order matters: RequestID first so every later log line carries the
// trace id, then RealIP, OTel, StructuredLogger, Recoverer and the
// per-route limits (RateLimiter, Timeout, UploadLimit).
package middleware
