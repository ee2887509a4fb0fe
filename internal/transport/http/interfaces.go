package http

import (
	"context"
	"io"

	"ordermacro/internal/operations"
	"ordermacro/internal/services"
	"ordermacro/pkg/contracts/domain"
)

// MacroRunner is the part of services.MacroService the handlers use
type MacroRunner interface {
	Run(ctx context.Context, req services.RunRequest) (*domain.RunResult, error)
	GetRun(id string) (*domain.RunResult, error)
	ListRuns(filter operations.RunFilter) []*domain.RunResult
	Macros() []services.MacroInfo
}

// UploadStore keeps uploaded files for the duration of a run
type UploadStore interface {
	SaveUpload(name string, r io.Reader) (string, error)
	Remove(path string) error
}
