package memory

import (
	"context"
	"time"
)

// Record is one remembered question/response exchange for a user.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
}

// Store keeps a bounded per-user conversation history. Append evicts the
// oldest records beyond the configured limit; History returns records
// oldest-first.
type Store interface {
	Append(ctx context.Context, userID, question, response string) error
	History(ctx context.Context, userID string) ([]Record, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}
