package sink

import (
	"context"
	"sync"

	"github.com/nao1215/cragscan/internal/model"
)

// Memory keeps records in memory.
type Memory struct {
	mu      sync.Mutex
	records []model.Record
	closed  bool
}

// NewMemory creates an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Accept implements Sink.
func (m *Memory) Accept(_ context.Context, rec model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.records = append(m.records, rec)
	return nil
}

// Close implements Sink.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Records returns a copy of everything accepted so far.
func (m *Memory) Records() []model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Record(nil), m.records...)
}

// Areas returns the accepted areas.
func (m *Memory) Areas() []model.Area {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Area
	for _, r := range m.records {
		if a, ok := r.(model.Area); ok {
			out = append(out, a)
		}
	}
	return out
}

// Routes returns the accepted routes.
func (m *Memory) Routes() []model.Route {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Route
	for _, r := range m.records {
		if rt, ok := r.(model.Route); ok {
			out = append(out, rt)
		}
	}
	return out
}

// Count returns how many records with id were accepted.
func (m *Memory) Count(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.RecordID() == id {
			n++
		}
	}
	return n
}
