package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"ordermacro/internal/infrastructure"
)

// TracerName is the instrumentation scope of run spans
const TracerName = "ordermacro.operation"

// OperationTracer records spans and metrics for runs and their stages
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.MacroMetrics
}

// NewOperationTracer binds the tracer to providers. Nil providers give a no-op tracer.
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	meter := noop.NewMeterProvider().Meter(TracerName)
	tracer := otel.Tracer(TracerName)
	if providers != nil {
		meter = providers.Meter
		if providers.Tracer != nil {
			tracer = providers.Tracer
		}
	}

	metrics, err := infrastructure.CreateMacroMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create macro metrics: %w", err)
	}

	return &OperationTracer{tracer: tracer, metrics: metrics}, nil
}

func runAttrs(req OperationRequest) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("mode", req.Mode),
		attribute.String("channel", req.Channel),
	}
}

// TraceRun opens the span covering a whole run
func (pt *OperationTracer) TraceRun(ctx context.Context, req OperationRequest) (context.Context, trace.Span) {
	ctx, span := pt.tracer.Start(ctx, fmt.Sprintf("macro.run.%s.%s", req.Mode, req.Channel),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", req.ID),
			attribute.String("run.mode", req.Mode),
			attribute.String("run.channel", req.Channel),
			attribute.String("run.input", req.InputPath),
		),
	)

	pt.metrics.ActiveRuns.Add(ctx, 1, metric.WithAttributes(runAttrs(req)...))
	return ctx, span
}

// TraceStage opens a child span for one stage
func (pt *OperationTracer) TraceStage(ctx context.Context, runID, stageID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "macro.stage."+stageID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("stage.id", stageID),
		),
	)
}

// RecordStageCompletion closes out a stage span
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, req OperationRequest, stageID string, duration time.Duration, err error) {
	attrs := append(runAttrs(req), attribute.String("stage", stageID))

	pt.metrics.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	span.SetAttributes(attribute.Float64("stage.duration_seconds", duration.Seconds()))

	if err != nil {
		pt.metrics.StageFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// RecordRunCompletion closes out the run span
func (pt *OperationTracer) RecordRunCompletion(ctx context.Context, span trace.Span, req OperationRequest, duration time.Duration, status OperationStatusValue, warnings int) {
	attrs := append(runAttrs(req), attribute.String("status", string(status)))

	pt.metrics.RunsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	pt.metrics.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	pt.metrics.ActiveRuns.Add(ctx, -1, metric.WithAttributes(runAttrs(req)...))
	if warnings > 0 {
		pt.metrics.CellWarnings.Add(ctx, int64(warnings), metric.WithAttributes(runAttrs(req)...))
	}

	span.SetAttributes(
		attribute.String("run.status", string(status)),
		attribute.Int("run.warnings", warnings),
	)
	infrastructure.AddSpanEvent(ctx, "run.completed", map[string]interface{}{
		"status":   string(status),
		"duration": duration.Seconds(),
		"warnings": warnings,
	})

	if status == OperationStatusCompleted {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("run finished with status %s", status))
	}
}

// RecordRows counts order rows written by a run
func (pt *OperationTracer) RecordRows(ctx context.Context, req OperationRequest, rows int) {
	if rows <= 0 {
		return
	}
	pt.metrics.RowsProcessed.Add(ctx, int64(rows), metric.WithAttributes(runAttrs(req)...))
}
