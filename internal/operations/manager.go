package operations

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager runs registered stages for a request and reports their progress
type Manager struct {
	config      *Config
	broadcaster *StatusBroadcaster
	tracer      *OperationTracer
	logger      *slog.Logger

	mu         sync.RWMutex
	operations map[string]*runningOperation
}

type runningOperation struct {
	state  *OperationState
	cancel context.CancelFunc
}

// ManagerOption customizes a Manager
type ManagerOption func(*Manager)

// WithTracer attaches span and metric recording
func WithTracer(t *OperationTracer) ManagerOption {
	return func(m *Manager) { m.tracer = t }
}

// WithLogger replaces the default logger
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager. hub may be nil when nobody listens for updates.
func NewManager(hub WebSocketHub, config *Config, opts ...ManagerOption) *Manager {
	if config == nil {
		config = NewConfig()
	}

	m := &Manager{
		config:     config,
		logger:     slog.Default(),
		operations: make(map[string]*runningOperation),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tracer == nil {
		// a no-op tracer never fails to build
		m.tracer, _ = NewOperationTracer(nil)
	}
	m.logger = m.logger.With(slog.String("component", "operations"))
	m.broadcaster = NewStatusBroadcaster(hub, m.logger)
	return m
}

// Close stops the status broadcaster
func (m *Manager) Close() {
	m.broadcaster.Stop()
}

// GetBroadcaster returns the status broadcaster
func (m *Manager) GetBroadcaster() *StatusBroadcaster {
	return m.broadcaster
}

// Execute runs the stages of reg in order. The first failing stage fails the run
// and every later stage is skipped. The returned state is never nil once
// stages were registered.
func (m *Manager) Execute(ctx context.Context, req OperationRequest, reg *Registry) (*OperationState, error) {
	if reg == nil || reg.Count() == 0 {
		return nil, NewFatalError("no stages registered", nil)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	state := NewOperationState(req.ID)
	state.SetConfig(ContextKeyMode, req.Mode)
	state.SetConfig(ContextKeyChannel, req.Channel)
	state.SetConfig(ContextKeyInputPath, req.InputPath)
	for k, v := range req.Parameters {
		state.SetConfig(k, v)
	}

	steps := reg.List()
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.storeOperation(state, cancel)
	defer m.removeOperation(req.ID)

	runCtx, span := m.tracer.TraceRun(runCtx, req)
	defer span.End()

	m.broadcaster.CreateOperation(req.ID, req.Mode, req.Channel, steps)
	state.Start()
	m.broadcaster.StartOperation(req.ID)
	m.logRunStart(runCtx, req)

	var runErr error
	for _, step := range steps {
		if runErr != nil {
			reason := "previous stage failed"
			if FailedStep(runErr) != "" {
				reason = "stage " + FailedStep(runErr) + " failed"
			}
			state.GetStage(step.ID()).Skip(reason)
			m.broadcaster.SkipStep(req.ID, step.ID(), reason)
			continue
		}
		runErr = m.executeStep(runCtx, req, state, step)
	}

	warnings := len(state.Warnings())
	switch {
	case runErr == nil:
		state.Complete()
		m.broadcaster.CompleteOperation(req.ID, completionMessage(state))
		if rows, ok := state.GetContext(ContextKeyRows); ok {
			if n, ok := rows.(int); ok {
				m.tracer.RecordRows(runCtx, req, n)
			}
		}
	case GetErrorType(runErr) == ErrorTypeCancellation:
		state.Cancel(runErr)
		m.broadcaster.CancelOperation(req.ID)
	default:
		state.Fail(runErr)
		m.broadcaster.FailOperation(req.ID, runErr)
	}

	m.tracer.RecordRunCompletion(runCtx, span, req, state.Duration(), state.GetStatus(), warnings)
	m.logRunComplete(runCtx, req, state, runErr)

	return state, runErr
}

func (m *Manager) executeStep(ctx context.Context, req OperationRequest, state *OperationState, step Step) error {
	id := step.ID()
	stepState := state.GetStage(id)

	if err := ctx.Err(); err != nil {
		opErr := contextError(id, err, 0)
		stepState.Fail(opErr)
		m.broadcaster.FailStep(req.ID, id, opErr)
		return opErr
	}

	if err := step.Validate(state); err != nil {
		opErr := WrapError(&OperationError{
			Type:    ErrorTypeValidation,
			Message: "stage preconditions not met",
			Cause:   err,
		}, id)
		stepState.Fail(opErr)
		m.broadcaster.FailStep(req.ID, id, opErr)
		m.logStageFailed(ctx, req.ID, id, opErr)
		return opErr
	}

	timeout := m.config.GetStageTimeout(id)
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	stepCtx, span := m.tracer.TraceStage(stepCtx, req.ID, id)
	defer span.End()

	stepState.Start()
	m.broadcaster.StartStep(req.ID, id)
	m.logStageStarted(stepCtx, req.ID, id)

	err := step.Execute(stepCtx, state)
	if err == nil && stepCtx.Err() != nil {
		err = stepCtx.Err()
	}
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			err = contextError(id, context.DeadlineExceeded, timeout)
		case errors.Is(err, context.Canceled) || ctx.Err() != nil:
			err = contextError(id, context.Canceled, 0)
		default:
			err = WrapError(err, id)
		}
		stepState.Fail(err)
		m.tracer.RecordStageCompletion(stepCtx, span, req, id, stepState.Duration(), err)
		m.broadcaster.FailStep(req.ID, id, err)
		m.logStageFailed(stepCtx, req.ID, id, err)
		return err
	}

	stepState.Complete()
	m.tracer.RecordStageCompletion(stepCtx, span, req, id, stepState.Duration(), nil)
	m.broadcaster.CompleteStep(req.ID, id, stepState.Message)
	m.logStageCompleted(stepCtx, req.ID, id, stepState.Duration())
	return nil
}

func contextError(step string, err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(step, timeout.String())
	}
	return NewCancellationError(step)
}

func completionMessage(state *OperationState) string {
	if out, ok := state.GetContext(ContextKeyOutputPath); ok {
		if s, ok := out.(string); ok && s != "" {
			return "saved " + s
		}
	}
	return "completed"
}

// GetOperation returns a copy of a running operation's state
func (m *Manager) GetOperation(id string) (*OperationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	op, ok := m.operations[id]
	if !ok {
		return nil, ErrOperationNotFound
	}
	return op.state.Clone(), nil
}

// ListOperations returns copies of all running operations
func (m *Manager) ListOperations() []*OperationState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*OperationState, 0, len(m.operations))
	for _, op := range m.operations {
		out = append(out, op.state.Clone())
	}
	return out
}

// CancelOperation stops a running operation. The active stage sees its context cancelled.
func (m *Manager) CancelOperation(id string) error {
	m.mu.RLock()
	op, ok := m.operations[id]
	m.mu.RUnlock()
	if !ok {
		return ErrOperationNotFound
	}
	op.cancel()
	return nil
}

// Response summarizes a finished state for API callers
func Response(state *OperationState) *OperationResponse {
	if state == nil {
		return nil
	}
	snap := state.Clone()
	resp := &OperationResponse{
		ID:       snap.ID,
		Status:   snap.Status,
		Duration: snap.Duration(),
		Steps:    snap.Steps,
		Warnings: len(snap.warnings),
	}
	if snap.Error != nil {
		resp.Error = snap.Error.Error()
	}
	return resp
}

func (m *Manager) storeOperation(state *OperationState, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = &runningOperation{state: state, cancel: cancel}
}

func (m *Manager) removeOperation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.operations, id)
}
