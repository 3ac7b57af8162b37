// Package export persists anchor indexes to SQLite so that other tools can
// query where anchors are defined and used.
package export

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"git.home.luguber.info/inful/adocxref/internal/anchors"
	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
)

// Run is one pass worth of indexes.
type Run struct {
	ID        string
	StartedAt time.Time
	Indexes   []ComponentIndex
}

// ComponentIndex is the anchor index of one component-version.
type ComponentIndex struct {
	Component string
	Version   string
	Index     *anchors.Map
}

// AnchorRow is an exported anchor.
type AnchorRow struct {
	Component string
	Version   string
	ID        string
	Source    string
	Line      int
	NavIndex  int
	Usages    int
}

// SQLiteExporter writes anchor indexes into a SQLite database.
type SQLiteExporter struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteExporter opens or creates the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteExporter(dbPath string) (*SQLiteExporter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryExport, "open sqlite database").
			WithContext("path", dbPath).
			Build()
	}
	// a single connection keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	e := &SQLiteExporter{db: db}
	if err := e.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.WrapError(err, errors.CategoryExport, "initialize schema").Build()
	}
	return e, nil
}

func (e *SQLiteExporter) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		anchors INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS anchors (
		run_id TEXT NOT NULL REFERENCES runs(id),
		component TEXT NOT NULL,
		version TEXT NOT NULL,
		anchor_id TEXT NOT NULL,
		source TEXT NOT NULL,
		line INTEGER NOT NULL,
		nav_index INTEGER NOT NULL,
		index_line INTEGER NOT NULL,
		PRIMARY KEY (run_id, component, version, anchor_id)
	);
	CREATE TABLE IF NOT EXISTS anchor_usages (
		run_id TEXT NOT NULL,
		component TEXT NOT NULL,
		version TEXT NOT NULL,
		anchor_id TEXT NOT NULL,
		document TEXT NOT NULL,
		line INTEGER NOT NULL,
		nav_index INTEGER NOT NULL,
		position INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_anchor_usages_anchor ON anchor_usages(run_id, anchor_id);
	`
	_, err := e.db.Exec(schema)
	return err
}

// Export writes a run in a single transaction.
func (e *SQLiteExporter) Export(ctx context.Context, run Run) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapError(err, errors.CategoryExport, "begin export transaction").Build()
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	total := 0
	for _, ci := range run.Indexes {
		total += ci.Index.Len()
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, anchors) VALUES (?, ?, ?)",
		run.ID, run.StartedAt.Unix(), total,
	); err != nil {
		return errors.WrapError(err, errors.CategoryExport, "insert run").WithContext("run_id", run.ID).Build()
	}

	for _, ci := range run.Indexes {
		for _, entry := range ci.Index.Entries() {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO anchors (run_id, component, version, anchor_id, source, line, nav_index, index_line) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
				run.ID, ci.Component, ci.Version, entry.ID, entry.Source.Ref.ID(), entry.Line, entry.Index.Nav, entry.Index.Line,
			); err != nil {
				return errors.WrapError(err, errors.CategoryExport, "insert anchor").WithContext("anchor", entry.ID).Build()
			}
			for i, doc := range entry.UsedIn {
				nav := -1
				if i < len(entry.AllIndices) {
					nav = entry.AllIndices[i].Nav
				}
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO anchor_usages (run_id, component, version, anchor_id, document, line, nav_index, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
					run.ID, ci.Component, ci.Version, entry.ID, doc.Ref.ID(), entry.UsedInLine[i], nav, i,
				); err != nil {
					return errors.WrapError(err, errors.CategoryExport, "insert anchor usage").WithContext("anchor", entry.ID).Build()
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapError(err, errors.CategoryExport, "commit export").WithContext("run_id", run.ID).Build()
	}
	return nil
}

// Anchors returns the anchors exported by a run, in index order per
// component-version.
func (e *SQLiteExporter) Anchors(ctx context.Context, runID string) ([]AnchorRow, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows, err := e.db.QueryContext(ctx, `
		SELECT a.component, a.version, a.anchor_id, a.source, a.line, a.nav_index,
			(SELECT COUNT(*) FROM anchor_usages u
				WHERE u.run_id = a.run_id AND u.component = a.component AND u.version = a.version AND u.anchor_id = a.anchor_id)
		FROM anchors a
		WHERE a.run_id = ?
		ORDER BY a.component, a.version, a.nav_index, a.index_line`,
		runID,
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryExport, "query anchors").Build()
	}
	defer rows.Close()

	var out []AnchorRow
	for rows.Next() {
		var r AnchorRow
		if err := rows.Scan(&r.Component, &r.Version, &r.ID, &r.Source, &r.Line, &r.NavIndex, &r.Usages); err != nil {
			return nil, errors.WrapError(err, errors.CategoryExport, "scan anchor").Build()
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryExport, "iterate anchors").Build()
	}
	return out, nil
}

// Close closes the database connection.
func (e *SQLiteExporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db.Close()
}

// IsBusy reports whether err comes from a database locked by another
// connection. Such failures are worth retrying.
func IsBusy(err error) bool {
	var serr *sqlite.Error
	if !stderrors.As(err, &serr) {
		return false
	}
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}
