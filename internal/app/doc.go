// Package app wires configuration, observability, the macro service and the
// HTTP server together and owns their lifecycle.
//
// # Initialization Flow
//
//  1. Resolve paths and create the output directories
//  2. Load channel overrides and pick the lookup source
//  3. Initialize OpenTelemetry and the websocket hub
//  4. Create the operations manager, run store and macro service
//  5. Build the router and the HTTP server (serve only)
//
// The CLI uses NewContainer for one-shot and batch runs; the serve command
// builds a full Application on top of the same container.
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests get ShutdownTimeout to
// finish, then the hub, the manager and the telemetry providers are closed.
// The package never calls os.Exit.
package app
