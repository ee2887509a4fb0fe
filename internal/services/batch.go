package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ordermacro/pkg/contracts/domain"
)

// BatchItem is the outcome of one file in a batch
type BatchItem struct {
	Input  string            `json:"input"`
	Result *domain.RunResult `json:"result,omitempty"`
	Err    error             `json:"-"`
	Error  string            `json:"error,omitempty"`
}

// BatchSummary collects the outcomes of a batch in input order
type BatchSummary struct {
	Items     []BatchItem   `json:"items"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// BatchRunner runs one macro over many files with bounded parallelism.
// Each run loads its own document, so runs share nothing but the service.
type BatchRunner struct {
	service *MacroService
	workers int
	logger  *slog.Logger
}

// NewBatchRunner creates a runner with at most workers concurrent runs
func NewBatchRunner(service *MacroService, workers int, logger *slog.Logger) *BatchRunner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchRunner{
		service: service,
		workers: workers,
		logger:  logger.With(slog.String("service", "batch")),
	}
}

// Run processes inputs with the macro for mode and channel. A failing file is
// recorded in the summary and does not stop the others. Cancelling ctx stops
// files that have not started yet.
func (b *BatchRunner) Run(ctx context.Context, mode domain.Mode, channel domain.Channel, inputs []string, exportCSV bool) (*BatchSummary, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	started := time.Now()
	items := make([]BatchItem, len(inputs))

	var g errgroup.Group
	g.SetLimit(b.workers)
	for i, input := range inputs {
		items[i].Input = input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			res, err := b.service.Run(ctx, RunRequest{
				Mode:      mode,
				Channel:   channel,
				InputPath: input,
				ExportCSV: exportCSV,
			})
			items[i].Result, items[i].Err = res, err
			return nil
		})
	}
	_ = g.Wait()

	summary := &BatchSummary{Items: items, Duration: time.Since(started)}
	for i := range items {
		if items[i].Err != nil {
			items[i].Error = rootCause(items[i].Err).Error()
			summary.Failed++
			continue
		}
		summary.Succeeded++
	}

	b.logger.InfoContext(ctx, "batch_completed",
		slog.String("mode", string(mode)),
		slog.String("channel", string(channel)),
		slog.Int("files", len(inputs)),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
		slog.Int("workers", b.workers),
		slog.Duration("duration", summary.Duration))
	return summary, ctx.Err()
}
