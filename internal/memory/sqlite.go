package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps conversation history in a local sqlite database.
type SQLiteStore struct {
	db    *sql.DB
	limit int
}

func NewSQLiteStore(ctx context.Context, path string, limit int) (*SQLiteStore, error) {
	if limit <= 0 {
		limit = 10
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite pragmas: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		question TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at_unix INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user_created ON conversations (user_id, created_at_unix);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate conversations: %w", err)
	}

	return &SQLiteStore{db: db, limit: limit}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, userID, question, response string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, question, response, created_at_unix)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, question, response, time.Now().UTC().UnixNano(),
	); err != nil {
		return fmt.Errorf("append conversation: %w", err)
	}

	// Keep only the newest records per user.
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations
		 WHERE user_id = ?
		   AND id NOT IN (
			SELECT id FROM conversations
			WHERE user_id = ?
			ORDER BY created_at_unix DESC, id DESC
			LIMIT ?
		 )`,
		userID, userID, s.limit,
	); err != nil {
		return fmt.Errorf("trim conversation history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, response, created_at_unix
		 FROM conversations
		 WHERE user_id = ?
		 ORDER BY created_at_unix ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.Question, &r.Response, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		r.Timestamp = time.Unix(0, createdAt).UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE created_at_unix < ?`,
		cutoff.UTC().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("prune conversations: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count pruned conversations: %w", err)
	}
	return int(removed), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
