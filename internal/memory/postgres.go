package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists conversation history in PostgreSQL. Suited to
// deployments where several bot replicas share one history.
type PostgresStore struct {
	pool  *pgxpool.Pool
	limit int
}

func NewPostgresStore(ctx context.Context, databaseURL string, limit int) (*PostgresStore, error) {
	if limit <= 0 {
		limit = 10
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			question TEXT NOT NULL,
			response TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_user_created ON conversations (user_id, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("init conversations schema: %w", err)
		}
	}

	return &PostgresStore{pool: pool, limit: limit}, nil
}

func (s *PostgresStore) Append(ctx context.Context, userID, question, response string) error {
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO conversations (id, user_id, question, response, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), userID, question, response, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("append conversation: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		`DELETE FROM conversations
		 WHERE user_id = $1
		   AND id NOT IN (
			SELECT id FROM conversations
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		 )`,
		userID, s.limit,
	); err != nil {
		return fmt.Errorf("trim conversation history: %w", err)
	}
	return nil
}

func (s *PostgresStore) History(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, question, response, created_at
		 FROM conversations
		 WHERE user_id = $1
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Question, &r.Response, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM conversations WHERE created_at < $1`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("prune conversations: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
