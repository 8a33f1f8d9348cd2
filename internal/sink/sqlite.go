package sink

import (
	"context"
	"sync"

	"github.com/nao1215/cragscan/internal/database"
	"github.com/nao1215/cragscan/internal/model"
)

// SQLite upserts records into a CragDB.
type SQLite struct {
	db     *database.CragDB
	mu     sync.Mutex
	closed bool
}

// NewSQLite wraps an open database. Close leaves db open so that the
// caller can keep using it after the crawl.
func NewSQLite(db *database.CragDB) *SQLite {
	return &SQLite{db: db}
}

// Accept implements Sink.
func (s *SQLite) Accept(ctx context.Context, rec model.Record) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return s.db.UpsertRecord(ctx, rec)
}

// Close implements Sink.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return nil
}
