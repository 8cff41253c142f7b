package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	_ "modernc.org/sqlite"
)

const busyTimeout = 5 * time.Second

// SQLiteRecorder keeps guard results in a local SQLite database.
type SQLiteRecorder struct {
	db        *sql.DB
	closeOnce sync.Once

	insertStmt *sql.Stmt
	recentStmt *sql.Stmt
}

func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	if path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	r := &SQLiteRecorder{db: db}

	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := r.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return r, nil
}

func (r *SQLiteRecorder) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS guard_audit (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		results TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_guard_audit_id ON guard_audit(id);
	CREATE INDEX IF NOT EXISTS idx_guard_audit_created_at ON guard_audit(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

func (r *SQLiteRecorder) prepareStatements() error {
	var err error

	r.insertStmt, err = r.db.Prepare(`
		INSERT INTO guard_audit (id, outcome, message, results, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	r.recentStmt, err = r.db.Prepare(`
		SELECT id, outcome, message, results, created_at
		FROM guard_audit
		ORDER BY created_at DESC, seq DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare recent statement: %w", err)
	}

	return nil
}

// Record appends a result. Results sharing an ID are all kept. The output
// text is not persisted.
func (r *SQLiteRecorder) Record(ctx context.Context, result models.GuardResult) error {
	if result.ID == "" {
		return fmt.Errorf("result id cannot be empty")
	}

	resultsJSON, err := json.Marshal(result.Results)
	if err != nil {
		return fmt.Errorf("failed to serialize results: %w", err)
	}

	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.insertStmt.ExecContext(ctx,
		result.ID,
		string(result.Outcome),
		result.Message,
		string(resultsJSON),
		createdAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record result %s: %w", result.ID, err)
	}
	return nil
}

// Recent returns up to limit results, newest first.
func (r *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]models.GuardResult, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := r.recentStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := []models.GuardResult{}
	for rows.Next() {
		var (
			id, outcome, message, resultsJSON string
			createdAt                         int64
		)
		if err := rows.Scan(&id, &outcome, &message, &resultsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		gr := models.GuardResult{
			ID:        id,
			Outcome:   models.Outcome(outcome),
			Message:   message,
			CreatedAt: time.Unix(0, createdAt).UTC(),
		}
		if err := json.Unmarshal([]byte(resultsJSON), &gr.Results); err != nil {
			return nil, fmt.Errorf("failed to deserialize results of %s: %w", id, err)
		}
		results = append(results, gr)
	}

	return results, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if r.insertStmt != nil {
			r.insertStmt.Close()
		}
		if r.recentStmt != nil {
			r.recentStmt.Close()
		}
		err = r.db.Close()
	})
	return err
}
