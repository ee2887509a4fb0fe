// Package services implements the business logic between the transports
// (CLI, HTTP) and the macro pipeline.
//
// MacroService resolves a macro for a mode and channel, runs it through the
// operations manager and records a domain.RunResult for every run, including
// failed ones. BatchRunner fans a directory of exports out over a bounded
// worker pool. HealthService reports liveness and readiness for the HTTP
// service.
//
//	svc := services.NewMacroService(manager, runs, services.WithPaths(paths))
//	result, err := svc.Run(ctx, services.RunRequest{
//	    Mode:      domain.ModeERP,
//	    Channel:   domain.ChannelZigzag,
//	    InputPath: "orders.xlsx",
//	})
package services
