package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Options selects and configures a history backend.
type Options struct {
	Backend     string
	FilePath    string
	SQLitePath  string
	DatabaseURL string
	Limit       int
}

// NewStore builds the configured backend. An empty backend defaults to the
// JSON file store.
func NewStore(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	switch backend {
	case "", "file":
		path := opts.FilePath
		if strings.TrimSpace(path) == "" {
			path = "user_conversations.json"
		}
		return NewFileStore(path, opts.Limit, logger)
	case "sqlite":
		path := opts.SQLitePath
		if strings.TrimSpace(path) == "" {
			path = "helpbot.db"
		}
		return NewSQLiteStore(ctx, path, opts.Limit)
	case "postgres":
		if strings.TrimSpace(opts.DatabaseURL) == "" {
			return nil, fmt.Errorf("postgres memory backend requires a database URL")
		}
		return NewPostgresStore(ctx, opts.DatabaseURL, opts.Limit)
	default:
		return nil, fmt.Errorf("unknown memory backend %q", opts.Backend)
	}
}
