package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/jdeck/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// defaultListLimit caps ListActivity when the caller passes no limit.
const defaultListLimit = 50

// Repository is the local activity journal.
type Repository struct {
	db *sql.DB
}

// Open opens the journal at path, creating the directory and schema as needed.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a journal that lives only as long as the process.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the schema.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS activity (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			action TEXT NOT NULL,
			target TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			board_id INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity(created_at DESC, seq DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_target ON activity(target, created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// RecordActivity appends one journal entry.
func (r *Repository) RecordActivity(ctx context.Context, activity domain.Activity) error {
	if strings.TrimSpace(activity.ID) == "" {
		return domain.ErrInvalidID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity(id, action, target, detail, board_id, created_at)
		VALUES(?, ?, ?, ?, ?, ?)
	`, activity.ID, string(activity.Action), activity.Target, activity.Detail, activity.BoardID, ts(activity.At))
	if err != nil {
		return fmt.Errorf("insert activity %s: %w", activity.ID, err)
	}
	return nil
}

// ListActivity returns up to limit entries, newest first.
func (r *Repository) ListActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, action, target, detail, board_id, created_at
		FROM activity
		ORDER BY created_at DESC, seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// ListActivityForTarget returns up to limit entries for one issue key or sprint, newest first.
func (r *Repository) ListActivityForTarget(ctx context.Context, target string, limit int) ([]domain.Activity, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, domain.ErrInvalidTarget
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, action, target, detail, board_id, created_at
		FROM activity
		WHERE target = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT ?
	`, target, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func scanActivities(rows *sql.Rows) ([]domain.Activity, error) {
	out := make([]domain.Activity, 0)
	for rows.Next() {
		var (
			activity   domain.Activity
			actionRaw  string
			createdRaw string
		)
		if err := rows.Scan(&activity.ID, &actionRaw, &activity.Target, &activity.Detail, &activity.BoardID, &createdRaw); err != nil {
			return nil, err
		}
		activity.Action = domain.ActivityAction(actionRaw)
		activity.At = parseTS(createdRaw)
		out = append(out, activity)
	}
	return out, rows.Err()
}

// ts formats t for storage. The fixed-width layout keeps lexical order equal to time order.
func ts(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

// parseTS parses a stored timestamp, returning the zero time on malformed input.
func parseTS(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
