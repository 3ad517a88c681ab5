package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"notemaster/pkg/models"
)

// DraftStore is a SQLite outbox holding the last unsaved block list per topic
type DraftStore struct {
	mu sync.RWMutex
	db *sql.DB
}

const draftSchema = `
CREATE TABLE IF NOT EXISTS drafts (
    topic_id TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    blocks TEXT NOT NULL,
    last_error TEXT NOT NULL DEFAULT '',
    failed_at INTEGER NOT NULL
);
`

// OpenDraftStore opens (or creates) the outbox at path. ":memory:" gives a
// private in-memory database.
func OpenDraftStore(path string) (*DraftStore, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create drafts directory: %w", err)
		}
		dsn = "file:" + path
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open drafts db: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(draftSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init drafts schema: %w", err)
	}
	return &DraftStore{db: db}, nil
}

// SaveDraft upserts the draft of a topic
func (s *DraftStore) SaveDraft(ctx context.Context, d models.Draft) error {
	blocks, err := json.Marshal(d.Blocks)
	if err != nil {
		return fmt.Errorf("marshal draft blocks: %w", err)
	}
	failedAt := d.FailedAt
	if failedAt.IsZero() {
		failedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts (topic_id, version, blocks, last_error, failed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(topic_id) DO UPDATE SET
			version = excluded.version,
			blocks = excluded.blocks,
			last_error = excluded.last_error,
			failed_at = excluded.failed_at`,
		d.TopicID, int64(d.Version), string(blocks), d.LastErr, failedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// GetDraft returns the draft of a topic, or nil
func (s *DraftStore) GetDraft(ctx context.Context, topicID string) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT topic_id, version, blocks, last_error, failed_at FROM drafts WHERE topic_id = ?`, topicID)
	d, err := scanDraft(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// ListDrafts returns every outstanding draft, oldest failure first
func (s *DraftStore) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT topic_id, version, blocks, last_error, failed_at FROM drafts ORDER BY failed_at`)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []models.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *d)
	}
	return drafts, rows.Err()
}

// DeleteDraft removes the draft of a topic
func (s *DraftStore) DeleteDraft(ctx context.Context, topicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE topic_id = ?`, topicID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// Close closes the database
func (s *DraftStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(row scanner) (*models.Draft, error) {
	var (
		d        models.Draft
		version  int64
		blocks   string
		failedAt int64
	)
	if err := row.Scan(&d.TopicID, &version, &blocks, &d.LastErr, &failedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(blocks), &d.Blocks); err != nil {
		return nil, fmt.Errorf("decode draft blocks: %w", err)
	}
	d.Version = uint64(version)
	d.FailedAt = time.UnixMilli(failedAt)
	return &d, nil
}
