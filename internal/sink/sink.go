package sink

import (
	"context"
	"errors"

	"github.com/nao1215/cragscan/internal/model"
)

// ErrClosed is returned by Accept after Close.
var ErrClosed = errors.New("sink is closed")

// Sink receives completed records.
type Sink interface {
	// Accept stores one record. It must be safe for concurrent use.
	Accept(ctx context.Context, rec model.Record) error

	// Close flushes and releases the destination.
	Close() error
}

// Multi writes every record to several sinks.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a Sink that writes to all provided sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Accept writes rec to each sink in order and stops on the first error.
func (m *Multi) Accept(ctx context.Context, rec model.Record) error {
	for _, s := range m.sinks {
		if err := s.Accept(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
