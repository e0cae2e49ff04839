package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore persists per-user histories in a single JSON document. Every
// mutation rewrites the whole file; a mutex serializes access so concurrent
// appends cannot interleave partial writes.
type FileStore struct {
	mu     sync.Mutex
	path   string
	limit  int
	logger *slog.Logger

	conversations map[string][]Record
}

func NewFileStore(path string, limit int, logger *slog.Logger) (*FileStore, error) {
	if limit <= 0 {
		limit = 10
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &FileStore{
		path:          path,
		limit:         limit,
		logger:        logger,
		conversations: map[string][]Record{},
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run, nothing to load.
	case err != nil:
		return nil, fmt.Errorf("read memory file: %w", err)
	default:
		if err := json.Unmarshal(data, &s.conversations); err != nil {
			logger.Error("memory file is corrupt, starting over", "path", path, "error", err)
			s.conversations = map[string][]Record{}
		}
	}

	return s, nil
}

func (s *FileStore) Append(ctx context.Context, userID, question, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := append(s.conversations[userID], Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Question:  question,
		Response:  response,
	})
	if len(records) > s.limit {
		records = records[len(records)-s.limit:]
	}
	s.conversations[userID] = records

	return s.flushLocked()
}

func (s *FileStore) History(ctx context.Context, userID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.conversations[userID]
	out := make([]Record, len(records))
	copy(out, records)
	return out, nil
}

func (s *FileStore) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, records := range s.conversations {
		kept := records[:0]
		for _, r := range records {
			if r.Timestamp.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == 0 {
			delete(s.conversations, userID)
			continue
		}
		s.conversations[userID] = kept
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.flushLocked()
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.conversations, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory file: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create memory dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write memory file: %w", err)
	}
	return nil
}
