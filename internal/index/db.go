package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS sessions (
    session_key     TEXT PRIMARY KEY,
    source          TEXT NOT NULL,
    file_path       TEXT NOT NULL,
    relative_path   TEXT NOT NULL DEFAULT '',
    project         TEXT NOT NULL DEFAULT '',
    cwd             TEXT NOT NULL DEFAULT '',
    model           TEXT NOT NULL DEFAULT '',
    started_at      TEXT NOT NULL DEFAULT '',
    first_user_text TEXT NOT NULL DEFAULT '',
    search_text     TEXT NOT NULL DEFAULT '',
    mtime           INTEGER NOT NULL DEFAULT 0,
    size            INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS events (
    session_key TEXT NOT NULL,
    event_id    INTEGER NOT NULL,
    ts          TEXT NOT NULL DEFAULT '',
    kind        TEXT NOT NULL DEFAULT 'event',
    role        TEXT NOT NULL,
    text        TEXT NOT NULL,
    line_number INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (session_key, event_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS events_fts USING fts5(
    text,
    content=events,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS events_ai AFTER INSERT ON events BEGIN
    INSERT INTO events_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS events_ad AFTER DELETE ON events BEGIN
    INSERT INTO events_fts(events_fts, rowid, text) VALUES('delete', old.rowid, old.text);
END;

CREATE TRIGGER IF NOT EXISTS events_au AFTER UPDATE ON events BEGIN
    INSERT INTO events_fts(events_fts, rowid, text) VALUES('delete', old.rowid, old.text);
    INSERT INTO events_fts(rowid, text) VALUES (new.rowid, new.text);
END;
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	// schema version tracking for forced re-index
	db.Exec("CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT)")
	d := &DB{db: db}
	d.migrateSchemaVersion()

	return d, nil
}

// schemaVersion should be bumped whenever recovery logic changes
// to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		// force re-index by resetting all session mtime/size to 0
		d.db.Exec("UPDATE sessions SET mtime = 0, size = 0")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type SessionInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetSessionInfo(sessionKey string) (*SessionInfo, error) {
	var info SessionInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM sessions WHERE session_key = ?",
		sessionKey,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllSessionKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT session_key FROM sessions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteSession(sessionKey string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events WHERE session_key = ?", sessionKey); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE session_key = ?", sessionKey); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) SessionCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

func (d *DB) EventCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM events").Scan(&n)
	return n, err
}

type SessionRow struct {
	SessionKey    string
	Source        string
	FilePath      string
	RelativePath  string
	Project       string
	Cwd           string
	Model         string
	StartedAt     string
	FirstUserText string
	Mtime         int64
}

const sessionCols = "session_key, source, file_path, relative_path, project, cwd, model, started_at, first_user_text, mtime"

func scanSessionRow(row *sql.Row) (*SessionRow, error) {
	var s SessionRow
	err := row.Scan(&s.SessionKey, &s.Source, &s.FilePath, &s.RelativePath, &s.Project,
		&s.Cwd, &s.Model, &s.StartedAt, &s.FirstUserText, &s.Mtime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (d *DB) GetSessionByKey(sessionKey string) (*SessionRow, error) {
	return scanSessionRow(d.db.QueryRow(
		"SELECT "+sessionCols+" FROM sessions WHERE session_key = ?",
		sessionKey,
	))
}

type EventRow struct {
	SessionKey string
	EventID    int
	Ts         string
	Kind       string
	Role       string
	Text       string
	LineNumber int
}

func (d *DB) GetEvents(sessionKey string) ([]EventRow, error) {
	rows, err := d.db.Query(
		"SELECT session_key, event_id, ts, kind, role, text, line_number FROM events WHERE session_key = ? ORDER BY event_id",
		sessionKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		if err := rows.Scan(&e.SessionKey, &e.EventID, &e.Ts, &e.Kind, &e.Role, &e.Text, &e.LineNumber); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetEventsWindow returns a window of events around a hit event.
// It only loads the necessary rows from the database instead of all events.
// startPos is the number of events before the returned window.
// totalCount is the total number of events in the session.
func (d *DB) GetEventsWindow(sessionKey string, hitEventID, context int) (events []EventRow, hitIdx int, startPos int, totalCount int, err error) {
	// get total count
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM events WHERE session_key = ?", sessionKey,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	// find the row_number (0-based position) of the hit event
	hitPos := -1
	if hitEventID >= 0 {
		err = d.db.QueryRow(`
			SELECT pos FROM (
				SELECT event_id, ROW_NUMBER() OVER (ORDER BY event_id) - 1 AS pos
				FROM events WHERE session_key = ?
			) WHERE event_id = ?`,
			sessionKey, hitEventID,
		).Scan(&hitPos)
		if err == sql.ErrNoRows {
			hitPos = -1
			err = nil
		} else if err != nil {
			return nil, -1, 0, 0, err
		}
	}

	// compute window bounds
	startPos = 0
	limit := totalCount
	if hitPos >= 0 {
		startPos = hitPos - context
		if startPos < 0 {
			startPos = 0
		}
		endPos := hitPos + context + 1
		if endPos > totalCount {
			endPos = totalCount
		}
		limit = endPos - startPos
	}

	rows, err := d.db.Query(
		"SELECT session_key, event_id, ts, kind, role, text, line_number FROM events WHERE session_key = ? ORDER BY event_id LIMIT ? OFFSET ?",
		sessionKey, limit, startPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	var result []EventRow
	localHitIdx := -1
	for rows.Next() {
		var e EventRow
		if err := rows.Scan(&e.SessionKey, &e.EventID, &e.Ts, &e.Kind, &e.Role, &e.Text, &e.LineNumber); err != nil {
			return nil, -1, 0, 0, err
		}
		if e.EventID == hitEventID {
			localHitIdx = len(result)
		}
		result = append(result, e)
	}
	return result, localHitIdx, startPos, totalCount, rows.Err()
}
