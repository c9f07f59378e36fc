package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schemaVersion is bumped whenever the tables below change shape
const schemaVersion = "1"

const schema = `
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS sessions (
    id            TEXT PRIMARY KEY,
    content_hash  TEXT NOT NULL UNIQUE,
    run_id        TEXT NOT NULL,
    source        TEXT NOT NULL DEFAULT '',
    encoding      TEXT NOT NULL DEFAULT '',
    grammar       TEXT NOT NULL DEFAULT '',
    date_order    TEXT NOT NULL DEFAULT '',
    confidence    REAL NOT NULL DEFAULT 0,
    imported_at   TEXT NOT NULL,
    first_message TEXT NOT NULL DEFAULT '',
    last_message  TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0,
    participants  TEXT NOT NULL DEFAULT '[]',
    stats         TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS messages (
    session_id   TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    seq          INTEGER NOT NULL,
    ts           TEXT NOT NULL,
    sender       TEXT NOT NULL,
    body         TEXT NOT NULL,
    word_count   INTEGER NOT NULL DEFAULT 0,
    char_count   INTEGER NOT NULL DEFAULT 0,
    emoji_count  INTEGER NOT NULL DEFAULT 0,
    is_media     INTEGER NOT NULL DEFAULT 0,
    contains_url INTEGER NOT NULL DEFAULT 0,
    is_question  INTEGER NOT NULL DEFAULT 0,
    reactions    TEXT NOT NULL DEFAULT '[]',
    source_line  INTEGER NOT NULL DEFAULT 0,
    continuation INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (session_id, seq)
);

CREATE INDEX IF NOT EXISTS messages_sender ON messages(session_id, sender);

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// OpenDatabase opens (creating if needed) the session database and applies the schema.
// ":memory:" opens a private in-memory database.
func OpenDatabase(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &StorageError{Path: path, Op: "open", Err: err}
		}
		dsn = "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "migrate", Err: err}
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	var ver string
	err := db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.Exec("INSERT INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
		return err
	case err != nil:
		return err
	case ver != schemaVersion:
		return fmt.Errorf("unsupported schema version %s (want %s)", ver, schemaVersion)
	}
	return nil
}
