package operations

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"ordermacro/pkg/contracts/domain"
)

// RunFilter narrows List results. Zero fields match everything.
type RunFilter struct {
	Mode    domain.Mode
	Channel domain.Channel
	Status  string
	Limit   int
}

// MemoryRunStore keeps finished run results in memory
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.RunResult
}

// NewMemoryRunStore creates an empty store
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{
		runs: make(map[string]*domain.RunResult),
	}
}

// Create stores a new result
func (s *MemoryRunStore) Create(run *domain.RunResult) error {
	if run == nil || run.RunID == "" {
		return fmt.Errorf("run result requires an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.RunID]; exists {
		return fmt.Errorf("run %s already exists", run.RunID)
	}
	s.runs[run.RunID] = copyRun(run)
	return nil
}

// Get retrieves a copy of a result
func (s *MemoryRunStore) Get(id string) (*domain.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, ErrOperationNotFound
	}
	return copyRun(run), nil
}

// Update replaces an existing result
func (s *MemoryRunStore) Update(run *domain.RunResult) error {
	if run == nil {
		return fmt.Errorf("run result is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.RunID]; !exists {
		return ErrOperationNotFound
	}
	s.runs[run.RunID] = copyRun(run)
	return nil
}

// List returns matching results, newest first
func (s *MemoryRunStore) List(filter RunFilter) []*domain.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RunResult
	for _, run := range s.runs {
		if filter.Mode != "" && run.Mode != filter.Mode {
			continue
		}
		if filter.Channel != "" && run.Channel != filter.Channel {
			continue
		}
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		result = append(result, copyRun(run))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].RunID < result[j].RunID
		}
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result
}

// Cleanup drops results started before now-maxAge and returns how many were removed
func (s *MemoryRunStore) Cleanup(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, run := range s.runs {
		if run.StartedAt.Before(cutoff) {
			delete(s.runs, id)
			removed++
		}
	}
	return removed
}

func copyRun(run *domain.RunResult) *domain.RunResult {
	c := *run
	if run.Sheets != nil {
		c.Sheets = append([]domain.SheetSummary(nil), run.Sheets...)
	}
	return &c
}
