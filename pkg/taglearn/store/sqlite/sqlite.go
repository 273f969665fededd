package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/taglearn/taglearn/pkg/taglearn/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes the
// schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS tag_weights (
	tag TEXT PRIMARY KEY,
	weight REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	documents INTEGER NOT NULL,
	tags_generated INTEGER NOT NULL,
	approved INTEGER NOT NULL,
	rejected INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_tags (
	run_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	tag TEXT NOT NULL,
	term TEXT NOT NULL,
	raw_score REAL NOT NULL,
	adjusted_score REAL NOT NULL,
	PRIMARY KEY(run_id, filename, ordinal),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_feedback (
	run_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	tag TEXT NOT NULL,
	status TEXT NOT NULL,
	relevance REAL NOT NULL,
	PRIMARY KEY(run_id, filename, ordinal),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_weights (
	run_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	weight REAL NOT NULL,
	PRIMARY KEY(run_id, tag),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveWeights replaces the persisted weight table with the given one.
func (s *sqliteStore) SaveWeights(ctx context.Context, weights map[string]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tag_weights"); err != nil {
		return fmt.Errorf("clear weights: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO tag_weights (tag, weight) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for tag, weight := range weights {
		if _, err := stmt.ExecContext(ctx, tag, weight); err != nil {
			return fmt.Errorf("insert weight %q: %w", tag, err)
		}
	}

	return tx.Commit()
}

// LoadWeights returns the persisted weight table. An empty table is not an
// error: a first run simply sees all-default weights.
func (s *sqliteStore) LoadWeights(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT tag, weight FROM tag_weights")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weights := make(map[string]float64)
	for rows.Next() {
		var tag string
		var weight float64
		if err := rows.Scan(&tag, &weight); err != nil {
			return nil, err
		}
		weights[tag] = weight
	}
	return weights, rows.Err()
}

// SaveRun stores a complete run record.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	summary := r.Summarize()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, documents, tags_generated, approved, rejected) VALUES (?, ?, ?, ?, ?, ?)",
		r.ID, r.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.Documents, summary.TagsGenerated, summary.Approved, summary.Rejected)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, doc := range r.Tags {
		for rank, tag := range doc.Tags {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO run_tags (run_id, filename, ordinal, tag, term, raw_score, adjusted_score) VALUES (?, ?, ?, ?, ?, ?, ?)",
				r.ID, doc.Filename, rank, tag.Tag, tag.Term, tag.Raw, tag.Adjusted)
			if err != nil {
				return fmt.Errorf("insert run tag: %w", err)
			}
		}
	}

	for _, doc := range r.Feedback {
		for rank, rec := range doc.Records {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO run_feedback (run_id, filename, ordinal, tag, status, relevance) VALUES (?, ?, ?, ?, ?, ?)",
				r.ID, doc.Filename, rank, rec.Tag, rec.Status, rec.Relevance)
			if err != nil {
				return fmt.Errorf("insert run feedback: %w", err)
			}
		}
	}

	for tag, weight := range r.Weights {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO run_weights (run_id, tag, weight) VALUES (?, ?, ?)",
			r.ID, tag, weight)
		if err != nil {
			return fmt.Errorf("insert run weight: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun returns a stored run by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	var startedAt string
	err := s.db.QueryRowContext(ctx, "SELECT started_at FROM runs WHERE id = ?", id).Scan(&startedAt)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}

	run := store.Run{ID: id, Weights: make(map[string]float64)}
	if ts, perr := time.Parse(time.RFC3339Nano, startedAt); perr == nil {
		run.StartedAt = ts
	}

	if err := s.loadRunTags(ctx, &run); err != nil {
		return store.Run{}, false, err
	}
	if err := s.loadRunFeedback(ctx, &run); err != nil {
		return store.Run{}, false, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT tag, weight FROM run_weights WHERE run_id = ?", id)
	if err != nil {
		return store.Run{}, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		var weight float64
		if err := rows.Scan(&tag, &weight); err != nil {
			return store.Run{}, false, err
		}
		run.Weights[tag] = weight
	}
	if err := rows.Err(); err != nil {
		return store.Run{}, false, err
	}

	return run, true, nil
}

func (s *sqliteStore) loadRunTags(ctx context.Context, run *store.Run) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT filename, tag, term, raw_score, adjusted_score FROM run_tags WHERE run_id = ? ORDER BY filename, ordinal",
		run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	byFile := make(map[string]int)
	for rows.Next() {
		var filename string
		var tag store.Tag
		if err := rows.Scan(&filename, &tag.Tag, &tag.Term, &tag.Raw, &tag.Adjusted); err != nil {
			return err
		}
		idx, ok := byFile[filename]
		if !ok {
			idx = len(run.Tags)
			byFile[filename] = idx
			run.Tags = append(run.Tags, store.DocTags{Filename: filename})
		}
		run.Tags[idx].Tags = append(run.Tags[idx].Tags, tag)
	}
	return rows.Err()
}

func (s *sqliteStore) loadRunFeedback(ctx context.Context, run *store.Run) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT filename, tag, status, relevance FROM run_feedback WHERE run_id = ? ORDER BY filename, ordinal",
		run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	byFile := make(map[string]int)
	for rows.Next() {
		var filename string
		var rec store.FeedbackEntry
		if err := rows.Scan(&filename, &rec.Tag, &rec.Status, &rec.Relevance); err != nil {
			return err
		}
		idx, ok := byFile[filename]
		if !ok {
			idx = len(run.Feedback)
			byFile[filename] = idx
			run.Feedback = append(run.Feedback, store.DocFeedback{Filename: filename})
		}
		run.Feedback[idx].Records = append(run.Feedback[idx].Records, rec)
	}
	return rows.Err()
}

// ListRuns returns the most recent runs, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, documents, tags_generated, approved, rejected FROM runs ORDER BY started_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []store.RunSummary
	for rows.Next() {
		var s store.RunSummary
		var startedAt string
		if err := rows.Scan(&s.ID, &startedAt, &s.Documents, &s.TagsGenerated, &s.Approved, &s.Rejected); err != nil {
			return nil, err
		}
		if ts, perr := time.Parse(time.RFC3339Nano, startedAt); perr == nil {
			s.StartedAt = ts
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
