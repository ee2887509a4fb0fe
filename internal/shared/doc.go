// Package shared holds helpers used by the tests of several packages.
//
// The testutil subpackage captures slog records so tests can assert the
// events a macro run emits (stage_started, value_coercion_failed, ...)
// together with their attributes, including those added through
// Logger.With such as run_id.
package shared
