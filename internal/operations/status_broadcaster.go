package operations

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ordermacro/pkg/contracts/events"
)

// StatusBroadcaster is the single authority for run status updates.
// Updates are applied one at a time on its own goroutine and each resulting
// snapshot is forwarded to the hub.
type StatusBroadcaster struct {
	mu       sync.RWMutex
	runs     map[string]*OperationSnapshot
	hub      WebSocketHub
	logger   *slog.Logger
	updates  chan updateRequest
	stop     chan struct{}
	stopOnce sync.Once
}

// OperationSnapshot is the complete state of a run at a point in time
type OperationSnapshot struct {
	RunID       string         `json:"run_id"`
	Mode        string         `json:"mode,omitempty"`
	Channel     string         `json:"channel,omitempty"`
	Status      string         `json:"status"`
	Progress    int            `json:"progress"`
	CurrentStep string         `json:"current_step"`
	Steps       []StepSnapshot `json:"steps"`
	StartedAt   time.Time      `json:"started_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// StepSnapshot represents the state of a single step
type StepSnapshot struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type updateRequest struct {
	runID      string
	eventType  events.MessageType
	step       string
	updateFunc func(*OperationSnapshot)
	done       chan struct{}
}

// NewStatusBroadcaster creates a broadcaster and starts its update loop
func NewStatusBroadcaster(hub WebSocketHub, logger *slog.Logger) *StatusBroadcaster {
	if logger == nil {
		logger = slog.Default()
	}

	sb := &StatusBroadcaster{
		runs:    make(map[string]*OperationSnapshot),
		hub:     hub,
		logger:  logger,
		updates: make(chan updateRequest, 100),
		stop:    make(chan struct{}),
	}

	go sb.processUpdates()

	return sb
}

func (sb *StatusBroadcaster) processUpdates() {
	for {
		select {
		case <-sb.stop:
			return
		case req := <-sb.updates:
			sb.handleUpdate(req)
		}
	}
}

func (sb *StatusBroadcaster) handleUpdate(req updateRequest) {
	defer close(req.done)

	sb.mu.Lock()
	snapshot, exists := sb.runs[req.runID]
	if !exists {
		now := time.Now()
		snapshot = &OperationSnapshot{
			RunID:     req.runID,
			Status:    string(OperationStatusPending),
			StartedAt: now,
			Steps:     []StepSnapshot{},
		}
		sb.runs[req.runID] = snapshot
	}

	req.updateFunc(snapshot)
	snapshot.UpdatedAt = time.Now()
	snapshot.Progress = progressOf(snapshot)

	switch snapshot.Status {
	case string(OperationStatusCompleted), string(OperationStatusFailed), string(OperationStatusCancelled):
		if snapshot.CompletedAt == nil {
			now := time.Now()
			snapshot.CompletedAt = &now
		}
	}

	out := copySnapshot(snapshot)
	sb.mu.Unlock()

	if sb.hub == nil {
		return
	}
	sb.hub.BroadcastUpdate(string(req.eventType), req.step, out.Status, out)
}

// progressOf is the share of finished steps, 0..100
func progressOf(s *OperationSnapshot) int {
	if len(s.Steps) == 0 {
		return 0
	}
	done := 0
	for _, step := range s.Steps {
		switch StepStatus(step.Status) {
		case StepStatusCompleted, StepStatusSkipped, StepStatusFailed:
			done++
		}
	}
	return done * 100 / len(s.Steps)
}

func copySnapshot(s *OperationSnapshot) *OperationSnapshot {
	out := *s
	out.Steps = append([]StepSnapshot(nil), s.Steps...)
	return &out
}

// update queues fn and waits until it has been applied. After Stop it is a no-op.
func (sb *StatusBroadcaster) update(runID string, eventType events.MessageType, step string, fn func(*OperationSnapshot)) {
	req := updateRequest{
		runID:      runID,
		eventType:  eventType,
		step:       step,
		updateFunc: fn,
		done:       make(chan struct{}),
	}

	select {
	case sb.updates <- req:
	case <-sb.stop:
		return
	}
	select {
	case <-req.done:
	case <-sb.stop:
	}
}

func (sb *StatusBroadcaster) setStep(stepID string, fn func(*StepSnapshot)) func(*OperationSnapshot) {
	return func(snapshot *OperationSnapshot) {
		for i := range snapshot.Steps {
			if snapshot.Steps[i].ID == stepID {
				fn(&snapshot.Steps[i])
				return
			}
		}
		step := StepSnapshot{ID: stepID, Name: stepID}
		fn(&step)
		snapshot.Steps = append(snapshot.Steps, step)
	}
}

// CreateOperation registers a run with its steps, all pending
func (sb *StatusBroadcaster) CreateOperation(runID, mode, channel string, steps []Step) {
	sb.update(runID, events.MessageTypeRunStarted, "", func(snapshot *OperationSnapshot) {
		snapshot.Mode = mode
		snapshot.Channel = channel
		snapshot.Status = string(OperationStatusPending)
		snapshot.Steps = make([]StepSnapshot, len(steps))
		for i, s := range steps {
			snapshot.Steps[i] = StepSnapshot{
				ID:     s.ID(),
				Name:   s.Name(),
				Status: string(StepStatusPending),
			}
		}
		snapshot.Message = "run created"
	})
}

// StartOperation marks a run as running
func (sb *StatusBroadcaster) StartOperation(runID string) {
	sb.update(runID, events.MessageTypeRunStarted, "", func(snapshot *OperationSnapshot) {
		snapshot.Status = string(OperationStatusRunning)
		snapshot.Message = "run started"
	})
}

// StartStep marks a step as active
func (sb *StatusBroadcaster) StartStep(runID, stepID string) {
	sb.update(runID, events.MessageTypeStageStarted, stepID, func(snapshot *OperationSnapshot) {
		sb.setStep(stepID, func(s *StepSnapshot) {
			s.Status = string(StepStatusActive)
		})(snapshot)
		snapshot.CurrentStep = stepID
	})
}

// CompleteStep marks a step as completed
func (sb *StatusBroadcaster) CompleteStep(runID, stepID, message string) {
	sb.update(runID, events.MessageTypeStageCompleted, stepID, sb.setStep(stepID, func(s *StepSnapshot) {
		s.Status = string(StepStatusCompleted)
		s.Message = message
	}))
}

// SkipStep marks a step as skipped
func (sb *StatusBroadcaster) SkipStep(runID, stepID, reason string) {
	sb.update(runID, events.MessageTypeStageCompleted, stepID, sb.setStep(stepID, func(s *StepSnapshot) {
		s.Status = string(StepStatusSkipped)
		s.Message = reason
	}))
}

// FailStep marks a step as failed
func (sb *StatusBroadcaster) FailStep(runID, stepID string, err error) {
	sb.update(runID, events.MessageTypeRunFailed, stepID, sb.setStep(stepID, func(s *StepSnapshot) {
		s.Status = string(StepStatusFailed)
		s.Error = err.Error()
	}))
}

// CompleteOperation marks a run as completed
func (sb *StatusBroadcaster) CompleteOperation(runID, message string) {
	sb.update(runID, events.MessageTypeRunCompleted, "", func(snapshot *OperationSnapshot) {
		snapshot.Status = string(OperationStatusCompleted)
		snapshot.CurrentStep = ""
		snapshot.Message = message
	})
}

// FailOperation marks a run as failed
func (sb *StatusBroadcaster) FailOperation(runID string, err error) {
	sb.update(runID, events.MessageTypeRunFailed, "", func(snapshot *OperationSnapshot) {
		snapshot.Status = string(OperationStatusFailed)
		snapshot.Error = err.Error()
		snapshot.CurrentStep = ""
	})
}

// CancelOperation marks a run as cancelled
func (sb *StatusBroadcaster) CancelOperation(runID string) {
	sb.update(runID, events.MessageTypeRunFailed, "", func(snapshot *OperationSnapshot) {
		snapshot.Status = string(OperationStatusCancelled)
		snapshot.CurrentStep = ""
		snapshot.Message = "run cancelled"
	})
}

// GetSnapshot returns a copy of the current snapshot for a run
func (sb *StatusBroadcaster) GetSnapshot(runID string) (*OperationSnapshot, bool) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	snapshot, exists := sb.runs[runID]
	if !exists {
		return nil, false
	}
	return copySnapshot(snapshot), true
}

// CleanupOldOperations drops finished runs older than maxAge
func (sb *StatusBroadcaster) CleanupOldOperations(ctx context.Context, maxAge time.Duration) int {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, snapshot := range sb.runs {
		if snapshot.CompletedAt != nil && now.Sub(*snapshot.CompletedAt) > maxAge {
			delete(sb.runs, id)
			removed++
			sb.logger.DebugContext(ctx, "run_snapshot_evicted",
				slog.String("run_id", id),
				slog.String("status", snapshot.Status))
		}
	}
	return removed
}

// Stop shuts down the update loop. Later updates are dropped.
func (sb *StatusBroadcaster) Stop() {
	sb.stopOnce.Do(func() { close(sb.stop) })
}
