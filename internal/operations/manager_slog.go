package operations

import (
	"context"
	"log/slog"
	"time"
)

func (m *Manager) logRunStart(ctx context.Context, req OperationRequest) {
	m.logger.InfoContext(ctx, "run_started",
		slog.String("run_id", req.ID),
		slog.String("mode", req.Mode),
		slog.String("channel", req.Channel),
		slog.String("input", req.InputPath))
}

func (m *Manager) logRunComplete(ctx context.Context, req OperationRequest, state *OperationState, err error) {
	attrs := []any{
		slog.String("run_id", req.ID),
		slog.String("status", string(state.GetStatus())),
		slog.Duration("duration", state.Duration()),
		slog.Int("warnings", len(state.Warnings())),
	}
	if err != nil {
		attrs = append(attrs, slog.String("failed_stage", FailedStep(err)), slog.String("error", err.Error()))
		m.logger.ErrorContext(ctx, "run_completed", attrs...)
		return
	}
	m.logger.InfoContext(ctx, "run_completed", attrs...)
}

func (m *Manager) logStageStarted(ctx context.Context, runID, stageID string) {
	m.logger.DebugContext(ctx, "stage_started",
		slog.String("run_id", runID),
		slog.String("stage", stageID))
}

func (m *Manager) logStageCompleted(ctx context.Context, runID, stageID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "stage_completed",
		slog.String("run_id", runID),
		slog.String("stage", stageID),
		slog.Duration("duration", duration))
}

func (m *Manager) logStageFailed(ctx context.Context, runID, stageID string, err error) {
	m.logger.ErrorContext(ctx, "stage_failed",
		slog.String("run_id", runID),
		slog.String("stage", stageID),
		slog.String("error_type", string(GetErrorType(err))),
		slog.String("error", err.Error()))
}
