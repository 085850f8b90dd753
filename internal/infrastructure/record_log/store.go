package record_log

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/openivms/telemetry-server/internal/domain"
	pkgerrors "github.com/pkg/errors"
)

// header is informational only; reads are positional.
var header = []string{"timestamp", "latitude", "longitude", "speed", "accel"}

// Store is a durable append-only CSV log of telemetry records. Appends are
// serialized by a mutex so concurrent writers cannot interleave partial lines;
// reads re-scan the backing file and skip rows that fail to decode, so a
// half-written line from a prior crash is dropped instead of aborting the scan.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore opens the record log at path, creating it with a header row when it
// does not exist. Initialization is idempotent: an existing log is never
// truncated or overwritten.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("record log path is empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to create record log directory")
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return &Store{path: path}, nil
		}
		return nil, pkgerrors.Wrap(err, "failed to create record log")
	}

	w := csv.NewWriter(f)
	if wErr := w.Write(header); wErr != nil {
		_ = f.Close()
		return nil, pkgerrors.Wrap(wErr, "failed to write record log header")
	}
	w.Flush()
	if wErr := w.Error(); wErr != nil {
		_ = f.Close()
		return nil, pkgerrors.Wrap(wErr, "failed to write record log header")
	}
	if cErr := f.Close(); cErr != nil {
		return nil, pkgerrors.Wrap(cErr, "failed to close record log")
	}

	return &Store{path: path}, nil
}

// Path returns the location of the backing log file.
func (s *Store) Path() string {
	return s.path
}

// Append serializes one record as a log line and flushes it durably before
// returning. The record's fields are written verbatim; no validation happens
// on the write path.
func (s *Store) Append(rec domain.RawRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to open record log for append")
	}

	w := csv.NewWriter(f)
	if wErr := w.Write(rec.Fields()); wErr != nil {
		_ = f.Close()
		return pkgerrors.Wrap(wErr, "failed to append record")
	}
	w.Flush()
	if wErr := w.Error(); wErr != nil {
		_ = f.Close()
		return pkgerrors.Wrap(wErr, "failed to append record")
	}
	if sErr := f.Sync(); sErr != nil {
		_ = f.Close()
		return pkgerrors.Wrap(sErr, "failed to sync record log")
	}
	return f.Close()
}

// Tail scans the log and returns at most the last n valid records in original
// order. A header row and any row that fails to decode are silently skipped.
// A missing log file yields an empty result, not an error.
func (s *Store) Tail(n int) ([]domain.TelemetryRecord, error) {
	out := make([]domain.TelemetryRecord, 0, n)

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, pkgerrors.Wrap(err, "failed to open record log")
	}
	defer func() {
		_ = f.Close()
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	first := true
	for {
		row, rErr := r.Read()
		if rErr == io.EOF {
			break
		}
		if rErr != nil {
			var parseErr *csv.ParseError
			if errors.As(rErr, &parseErr) {
				continue
			}
			return nil, pkgerrors.Wrap(rErr, "failed to scan record log")
		}

		if first {
			first = false
			if len(row) > 0 && row[0] == header[0] {
				continue
			}
		}

		rec, ok := domain.DecodeRow(row)
		if !ok {
			continue
		}
		if n > 0 && len(out) == n {
			out = out[1:]
		}
		out = append(out, rec)
	}

	return out, nil
}

// Count reports the number of valid records currently in the log.
func (s *Store) Count() (int, error) {
	recs, err := s.Tail(0)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}
