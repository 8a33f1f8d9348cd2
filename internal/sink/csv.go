package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nao1215/cragscan/internal/model"
)

// CSV file names inside the output directory.
const (
	AreasFile  = "areas.csv"
	RoutesFile = "routes.csv"
)

// CSV appends records to one CSV file per kind. The header row is written
// only when a file is new or empty, so repeated runs append to the same
// files.
type CSV struct {
	mu     sync.Mutex
	files  map[model.Kind]*csvFile
	closed bool
}

type csvFile struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSV creates dir if needed and opens both files for appending.
func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	s := &CSV{files: make(map[model.Kind]*csvFile, 2)}
	specs := []struct {
		kind   model.Kind
		name   string
		header []string
	}{
		{model.KindArea, AreasFile, model.AreaColumns()},
		{model.KindRoute, RoutesFile, model.RouteColumns()},
	}
	for _, spec := range specs {
		f, err := openCSV(filepath.Join(dir, spec.name), spec.header)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.files[spec.kind] = f
	}
	return s, nil
}

func openCSV(path string, header []string) (*csvFile, error) {
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write header to %s: %w", path, err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write header to %s: %w", path, err)
		}
	}
	return &csvFile{file: f, writer: w}, nil
}

// Accept implements Sink. Each record is flushed before Accept returns.
func (s *CSV) Accept(_ context.Context, rec model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	f, ok := s.files[rec.Kind()]
	if !ok {
		return fmt.Errorf("no csv file for kind %q", rec.Kind())
	}
	if err := f.writer.Write(rec.Values()); err != nil {
		return fmt.Errorf("failed to write %s %s: %w", rec.Kind(), rec.RecordID(), err)
	}
	f.writer.Flush()
	if err := f.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s %s: %w", rec.Kind(), rec.RecordID(), err)
	}
	return nil
}

// Close implements Sink.
func (s *CSV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, f := range s.files {
		f.writer.Flush()
		if err := f.writer.Error(); err != nil {
			errs = append(errs, err)
		}
		if err := f.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
