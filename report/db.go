// Package report keeps history of conversion runs in sqlite database.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"sc2sx/convert/stylex"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id       TEXT PRIMARY KEY,
	started  TEXT NOT NULL,
	finished TEXT,
	sources  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	file      TEXT NOT NULL,
	component TEXT NOT NULL,
	style_key TEXT NOT NULL,
	bailed    INTEGER NOT NULL,
	reason    TEXT
);
CREATE TABLE IF NOT EXISTS diagnostics (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	file      TEXT NOT NULL,
	component TEXT NOT NULL,
	severity  TEXT NOT NULL,
	reason    TEXT NOT NULL,
	location  TEXT,
	context   TEXT
);
CREATE INDEX IF NOT EXISTS diagnostics_run ON diagnostics(run_id, reason);
`

// DB is a single connection to the report database. It must be used from one
// goroutine only.
type DB struct {
	conn *sqlite.Conn
	log  *zap.Logger
}

// Run describes a recorded conversion run.
type Run struct {
	ID       uuid.UUID
	Started  time.Time
	Finished time.Time // zero for runs which never completed
	Sources  int
}

// Open opens (creating when necessary) database at path and makes sure
// schema is in place.
func Open(path string, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("unable to open report database %s: %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare report database schema: %w", err)
	}
	return &DB{conn: conn, log: log.Named("report")}, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// BeginRun registers new run and returns its identifier.
func (db *DB) BeginRun(started time.Time, sources int) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("unable to generate run id: %w", err)
	}
	err = sqlitex.Execute(db.conn, `INSERT INTO runs (id, started, sources) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{id.String(), started.UTC().Format(time.RFC3339Nano), int64(sources)}})
	if err != nil {
		return uuid.Nil, fmt.Errorf("unable to record run: %w", err)
	}
	db.log.Debug("Run started", zap.Stringer("run", id))
	return id, nil
}

// FinishRun stamps run completion time.
func (db *DB) FinishRun(id uuid.UUID, finished time.Time) error {
	err := sqlitex.Execute(db.conn, `UPDATE runs SET finished = ? WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{finished.UTC().Format(time.RFC3339Nano), id.String()}})
	if err != nil {
		return fmt.Errorf("unable to finish run %s: %w", id, err)
	}
	if db.conn.Changes() == 0 {
		return fmt.Errorf("unknown run %s", id)
	}
	return nil
}

// Record stores results of a single source file. Everything is written in one
// transaction.
func (db *DB) Record(id uuid.UUID, file string, results []*stylex.Result) (err error) {
	defer sqlitex.Save(db.conn)(&err)

	run := id.String()
	for _, r := range results {
		var bailed int64
		if r.Bailed {
			bailed = 1
		}
		err = sqlitex.Execute(db.conn,
			`INSERT INTO results (run_id, file, component, style_key, bailed, reason) VALUES (?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{run, file, r.Component, r.StyleKey, bailed, string(r.Reason)}})
		if err != nil {
			return fmt.Errorf("unable to record result for %s: %w", r.Component, err)
		}
		for _, d := range r.Diagnostics {
			err = sqlitex.Execute(db.conn,
				`INSERT INTO diagnostics (run_id, file, component, severity, reason, location, context) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				&sqlitex.ExecOptions{Args: []any{run, file, r.Component, d.Severity.String(), string(d.Reason), d.Location.String(), d.Context}})
			if err != nil {
				return fmt.Errorf("unable to record diagnostic for %s: %w", r.Component, err)
			}
		}
	}
	return nil
}

// Reasons counts diagnostics of the run by reason tag.
func (db *DB) Reasons(id uuid.UUID) (map[string]int, error) {
	out := make(map[string]int)
	err := sqlitex.Execute(db.conn, `SELECT reason, COUNT(*) FROM diagnostics WHERE run_id = ? GROUP BY reason`,
		&sqlitex.ExecOptions{
			Args: []any{id.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				out[stmt.ColumnText(0)] = int(stmt.ColumnInt64(1))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to summarize run %s: %w", id, err)
	}
	return out, nil
}

// Bailed lists components left unconverted in the run as "file: component".
func (db *DB) Bailed(id uuid.UUID) ([]string, error) {
	var out []string
	err := sqlitex.Execute(db.conn, `SELECT file, component FROM results WHERE run_id = ? AND bailed = 1 ORDER BY file, rowid`,
		&sqlitex.ExecOptions{
			Args: []any{id.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				out = append(out, stmt.ColumnText(0)+": "+stmt.ColumnText(1))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to list unconverted components of run %s: %w", id, err)
	}
	return out, nil
}

// Runs returns recorded runs, oldest first.
func (db *DB) Runs() ([]Run, error) {
	var out []Run
	err := sqlitex.Execute(db.conn, `SELECT id, started, finished, sources FROM runs ORDER BY started`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			id, err := uuid.Parse(stmt.ColumnText(0))
			if err != nil {
				return fmt.Errorf("bad run id %q: %w", stmt.ColumnText(0), err)
			}
			r := Run{ID: id, Sources: int(stmt.ColumnInt64(3))}
			if r.Started, err = time.Parse(time.RFC3339Nano, stmt.ColumnText(1)); err != nil {
				return fmt.Errorf("bad start time of run %s: %w", id, err)
			}
			if s := stmt.ColumnText(2); s != "" {
				if r.Finished, err = time.Parse(time.RFC3339Nano, s); err != nil {
					return fmt.Errorf("bad finish time of run %s: %w", id, err)
				}
			}
			out = append(out, r)
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("unable to list runs: %w", err)
	}
	return out, nil
}
