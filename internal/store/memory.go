package store

import (
	"context"
	"sync"

	"surveycore/internal/survey"
)

// Memory is the in-memory ResultsStore used by tests and ephemeral runs.
type Memory struct {
	mu      sync.RWMutex
	records []survey.Record
	runs    []RunSummary
}

// NewMemory returns an empty in-memory results store.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) SaveTable(_ context.Context, table survey.Table) error {
	m.mu.Lock()
	m.records = append([]survey.Record(nil), table.Records...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) LoadTable(_ context.Context) (survey.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return survey.Table{Records: append([]survey.Record(nil), m.records...)}, nil
}

func (m *Memory) AppendRun(_ context.Context, run RunSummary) error {
	m.mu.Lock()
	m.runs = append(m.runs, run)
	m.mu.Unlock()
	return nil
}

func (m *Memory) ListRuns(_ context.Context) ([]RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RunSummary(nil), m.runs...), nil
}

func (m *Memory) Close() error { return nil }
