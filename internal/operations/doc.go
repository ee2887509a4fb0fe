// Package operations runs a macro as an ordered list of stages.
//
// A Registry holds the stages of one run in execution order
// (load, normalize, sort_group, partition, style, save). The Manager executes
// them sequentially against a shared OperationState: each stage gets its own
// timeout, a failed stage fails the run and every later stage is skipped.
// Non-fatal findings, such as a cell that could not be coerced, are collected
// on the state as warnings instead of failing the stage.
//
// Progress is published through a StatusBroadcaster, which serializes all
// snapshot updates on one goroutine and forwards them to a WebSocketHub.
//
//	reg := operations.NewRegistry()
//	reg.Register(operations.NewStep(operations.StageLoad, "Load", load))
//	reg.Register(operations.NewStep(operations.StageSave, "Save", save))
//
//	mgr := operations.NewManager(hub, nil)
//	defer mgr.Close()
//	state, err := mgr.Execute(ctx, operations.OperationRequest{Mode: "erp", Channel: "etc"}, reg)
package operations
