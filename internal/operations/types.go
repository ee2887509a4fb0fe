package operations

import (
	"time"
)

// Stage identifiers of a macro run, in execution order
const (
	StageLoad      = "load"
	StageNormalize = "normalize"
	StageSortGroup = "sort_group"
	StagePartition = "partition"
	StageCompute   = "compute"
	StageStyle     = "style"
	StageSave      = "save"
)

// Context keys for operation state
const (
	ContextKeyMode      = "mode"
	ContextKeyChannel   = "channel"
	ContextKeyInputPath = "input_path"

	// Set by stages for the manager to report
	ContextKeyOutputPath = "output_path"
	ContextKeyRows       = "rows"
)

// DefaultStageTimeout bounds a single stage when no override is configured
const DefaultStageTimeout = 2 * time.Minute

// OperationRequest represents a request to execute a run
type OperationRequest struct {
	ID         string                 `json:"id"`
	Mode       string                 `json:"mode"`
	Channel    string                 `json:"channel"`
	InputPath  string                 `json:"input_path"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// OperationResponse summarizes a finished run
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Warnings int                   `json:"warnings"`
	Error    string                `json:"error,omitempty"`
}
