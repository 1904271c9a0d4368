package review

import (
	"context"
	"sort"
	"sync"

	domain "github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

// MemoryHistory is a process-local HistoryStore used when Redis is off.  It
// keeps at most capacity runs and evicts the oldest first.
type MemoryHistory struct {
	mu       sync.RWMutex
	capacity int
	runs     map[string]*domain.Run
	order    []string
}

// NewMemoryHistory builds a MemoryHistory; capacity <= 0 selects 256.
func NewMemoryHistory(capacity int) *MemoryHistory {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryHistory{capacity: capacity, runs: make(map[string]*domain.Run)}
}

func (m *MemoryHistory) Save(_ context.Context, run *domain.Run) error {
	if run == nil || run.ID == "" {
		return errors.InvalidParam("run id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[run.ID]; !ok {
		m.order = append(m.order, run.ID)
	}
	cp := *run
	m.runs[run.ID] = &cp
	for len(m.order) > m.capacity {
		delete(m.runs, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

func (m *MemoryHistory) Get(_ context.Context, id string) (*domain.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeReviewNotFound, "review run not found").WithDetail(id)
	}
	cp := *run
	return &cp, nil
}

// Recent returns up to limit runs ordered by StartedAt, newest first.
func (m *MemoryHistory) Recent(_ context.Context, limit int) ([]*domain.Run, error) {
	m.mu.RLock()
	out := make([]*domain.Run, 0, len(m.runs))
	for _, run := range m.runs {
		cp := *run
		out = append(out, &cp)
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

//Personal.AI order the ending
