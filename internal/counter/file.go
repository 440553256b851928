package counter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileState struct {
	Counters   map[string]int64     `json:"counters"`
	Timestamps map[string]time.Time `json:"timestamps"`
}

// FileStore persists counters as a small JSON document, written atomically
// through a temp-file rename. Suitable for single-instance deployments.
type FileStore struct {
	path string

	mu    sync.Mutex
	state fileState
}

// NewFileStore loads (or initializes) the counter file at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		state: fileState{
			Counters:   make(map[string]int64),
			Timestamps: make(map[string]time.Time),
		},
	}
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// first run
	case err != nil:
		return nil, fmt.Errorf("counter: read %s: %w", path, err)
	default:
		if err := json.Unmarshal(raw, &s.state); err != nil {
			return nil, fmt.Errorf("counter: parse %s: %w", path, err)
		}
		if s.state.Counters == nil {
			s.state.Counters = make(map[string]int64)
		}
		if s.state.Timestamps == nil {
			s.state.Timestamps = make(map[string]time.Time)
		}
	}
	return s, nil
}

func (s *FileStore) Increment(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.Counters[name] + 1
	s.state.Counters[name] = next
	if err := s.flushLocked(); err != nil {
		// Keep memory and disk agreeing: a failed flush must not leave a
		// count the caller was told did not happen.
		s.state.Counters[name] = next - 1
		return 0, err
	}
	return next, nil
}

func (s *FileStore) Value(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Counters[name], nil
}

func (s *FileStore) Touch(ctx context.Context, name string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Timestamps[name] = t
	return s.flushLocked()
}

func (s *FileStore) LastTouch(ctx context.Context, name string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Timestamps[name], nil
}

func (s *FileStore) flushLocked() error {
	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("counter: marshal state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("counter: ensure directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("counter: write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("counter: replace file: %w", err)
	}
	return nil
}
