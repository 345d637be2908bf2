// Package analytics maintains the append-only query usage log.
//
// The log is a pure side channel: write failures drop the record with a
// warning and never propagate to the retrieval path. Aggregation over
// the full log powers get_top_queries.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rengrx/research-report-orchestrator/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS query_log (
	id           TEXT PRIMARY KEY,
	ts           INTEGER NOT NULL,
	query        TEXT NOT NULL,
	method       TEXT NOT NULL,
	result_count INTEGER NOT NULL,
	latency_ms   REAL NOT NULL,
	cache_hit    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_query_log_query ON query_log(query);
`

// QueryCount pairs a query text with its occurrence count.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Recorder appends analytics records to a SQLite-backed log. A nil
// Recorder is valid: every method is a no-op, so callers need no guard
// when analytics is disabled.
type Recorder struct {
	db  *sql.DB
	log *zap.Logger
}

// Open creates or opens the query log at path. The parent directory is
// created if missing.
func Open(path string, log *zap.Logger) (*Recorder, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create analytics directory: %w", err)
		}
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply analytics schema: %w", err)
	}

	return &Recorder{db: db, log: log}, nil
}

// Log appends one record to the query log. Failures are reported via
// the logger and the record is dropped; Log never returns an error and
// never panics.
func (r *Recorder) Log(ctx context.Context, rec types.AnalyticsRecord) {
	if r == nil || r.db == nil {
		return
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if err := rec.Validate(); err != nil {
		r.log.Warn("analytics record invalid, dropping", zap.Error(err))
		return
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO query_log (id, ts, query, method, result_count, latency_ms, cache_hit)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UnixMilli(), rec.Query, rec.Method,
		rec.ResultCount, rec.LatencyMS, boolToInt(rec.CacheHit))
	if err != nil {
		r.log.Warn("analytics write failed, dropping record",
			zap.String("query", rec.Query), zap.Error(err))
	}
}

// TopQueries aggregates the full log by exact query text and returns
// the n most frequent queries. Frequency ties are broken by first-seen
// order.
func (r *Recorder) TopQueries(ctx context.Context, n int) ([]QueryCount, error) {
	if r == nil || r.db == nil {
		return []QueryCount{}, nil
	}
	if n <= 0 {
		return []QueryCount{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT query, COUNT(*) AS cnt
		 FROM query_log
		 GROUP BY query
		 ORDER BY cnt DESC, MIN(rowid) ASC
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("aggregate top queries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]QueryCount, 0, n)
	for rows.Next() {
		var qc QueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, fmt.Errorf("scan top query: %w", err)
		}
		results = append(results, qc)
	}
	return results, rows.Err()
}

// Close flushes and closes the underlying log store.
func (r *Recorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
