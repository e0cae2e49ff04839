package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the event bursts editors produce on save.
const debounceWindow = 250 * time.Millisecond

// Service watches one file and invokes onChange when it is rewritten.
// Watching the parent directory instead of the file itself survives the
// rename-over-replace pattern most editors and config tools use.
type Service struct {
	path     string
	logger   *slog.Logger
	onChange func(context.Context)
	watcher  *fsnotify.Watcher
}

func New(path string, logger *slog.Logger, onChange func(context.Context)) (*Service, error) {
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		path:     filepath.Clean(path),
		logger:   logger,
		onChange: onChange,
		watcher:  fileWatcher,
	}, nil
}

func (s *Service) Start(ctx context.Context) error {
	defer s.watcher.Close()

	dir := filepath.Dir(s.path)
	if err := s.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch path %s: %w", dir, err)
	}
	s.logger.Info("knowledge watcher started", "path", s.path)

	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("knowledge watcher stopped")
			return nil
		case event := <-s.watcher.Events:
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(debounceWindow, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			s.logger.Info("knowledge file changed", "path", s.path)
			s.onChange(ctx)
		case err := <-s.watcher.Errors:
			if err != nil {
				s.logger.Error("file watcher error", "error", err)
			}
		}
	}
}
