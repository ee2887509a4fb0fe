// Package http exposes the macro engine over HTTP with chi.
//
// Handlers stay thin: they parse the request, hand it to the services layer
// and render the result. Every error leaves through the RFC 7807 error
// handler of internal/errors, so clients always receive problem+json with
// the request's trace id.
//
// Routes:
//
//	POST /api/v1/macros/{mode}/{channel}   multipart upload "file", runs one macro
//	GET  /api/v1/macros/channels           available modes, channels and macros
//	GET  /api/v1/runs                      recorded runs, newest first
//	GET  /api/v1/runs/{id}                 one recorded run
//	GET  /ws                               stage events as JSON
//	GET  /healthz, /readyz, /metrics
package http
