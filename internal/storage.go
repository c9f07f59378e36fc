package internal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSessionNotFound is returned when no stored session matches an ID
var ErrSessionNotFound = errors.New("session not found")

// Store persists parsed sessions in SQLite, keyed by content hash
type Store struct {
	db   *sql.DB
	path string
}

// SessionSummary is a stored session without its records
type SessionSummary struct {
	ID           string
	ContentHash  string
	RunID        string
	Source       string
	Grammar      GrammarID
	ImportedAt   time.Time
	FirstMessage time.Time
	LastMessage  time.Time
	MessageCount int
	Participants []string
}

// OpenStore opens the session store at path
func OpenStore(path string) (*Store, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// NewStore migrates db and wraps it; the caller keeps ownership of db
func NewStore(db *sql.DB) (*Store, error) {
	if err := migrate(db); err != nil {
		return nil, &StorageError{Path: ":memory:", Op: "migrate", Err: err}
	}
	return &Store{db: db, path: ":memory:"}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location
func (s *Store) Path() string {
	return s.path
}

// SaveSession stores session and its records in one transaction.
// Saving bytes that were already imported is a no-op and reports false.
func (s *Store) SaveSession(session *Session) (bool, error) {
	existing, err := s.FindByHash(session.ContentHash)
	if err != nil {
		return false, err
	}
	if existing != nil {
		LogDebug("Session %s already stored (run %s)", existing.ID, existing.RunID)
		return false, nil
	}

	participants, err := json.Marshal(session.Metadata.Participants)
	if err != nil {
		return false, s.wrap("save", err)
	}
	stats, err := json.Marshal(session.Stats)
	if err != nil {
		return false, s.wrap("save", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, s.wrap("save", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO sessions
		(id, content_hash, run_id, source, encoding, grammar, date_order, confidence,
		 imported_at, first_message, last_message, message_count, participants, stats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.ContentHash, session.RunID, session.Source, string(session.Encoding),
		string(session.Grammar), session.DateOrder, session.Confidence,
		formatTime(session.Metadata.ImportedAt), formatTime(session.Metadata.FirstMessage),
		formatTime(session.Metadata.LastMessage), session.Metadata.MessageCount,
		string(participants), string(stats))
	if err != nil {
		return false, s.wrap("save", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO messages
		(session_id, seq, ts, sender, body, word_count, char_count, emoji_count,
		 is_media, contains_url, is_question, reactions, source_line, continuation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return false, s.wrap("save", err)
	}
	defer stmt.Close()

	for i, r := range session.Records {
		reactions := []byte("[]")
		if len(r.Reactions) > 0 {
			if reactions, err = json.Marshal(r.Reactions); err != nil {
				return false, s.wrap("save", err)
			}
		}
		if _, err := stmt.Exec(session.ID, i, formatTime(r.Timestamp), r.Sender, r.Body,
			r.WordCount, r.CharCount, r.EmojiCount, r.IsMedia, r.ContainsURL, r.IsQuestion,
			string(reactions), r.SourceLine, r.Continuation); err != nil {
			return false, s.wrap("save", fmt.Errorf("message %d: %w", i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return false, s.wrap("save", err)
	}
	return true, nil
}

// FindByHash returns the summary of the session imported from identical bytes, or nil
func (s *Store) FindByHash(hash string) (*SessionSummary, error) {
	row := s.db.QueryRow(summaryQuery+" WHERE content_hash = ?", hash)
	sum, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrap("load", err)
	}
	return sum, nil
}

// ListSessions returns stored sessions, most recently imported first
func (s *Store) ListSessions() ([]SessionSummary, error) {
	rows, err := s.db.Query(summaryQuery + " ORDER BY imported_at DESC, id")
	if err != nil {
		return nil, s.wrap("load", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, s.wrap("load", err)
		}
		out = append(out, *sum)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("load", err)
	}
	return out, nil
}

// ResolveID expands a unique ID prefix to a full session ID
func (s *Store) ResolveID(prefix string) (string, error) {
	rows, err := s.db.Query("SELECT id FROM sessions WHERE id LIKE ? ORDER BY id",
		strings.ReplaceAll(prefix, "%", "")+"%")
	if err != nil {
		return "", s.wrap("load", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", s.wrap("load", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", s.wrap("load", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrSessionNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("ambiguous session ID %q matches %d sessions", prefix, len(ids))
	}
}

// LoadSession loads a session and its records by ID or unique ID prefix
func (s *Store) LoadSession(idOrPrefix string) (*Session, error) {
	id, err := s.ResolveID(idOrPrefix)
	if err != nil {
		return nil, err
	}

	var (
		session                                Session
		encoding, grammar, participants, stats string
		importedAt, firstMessage, lastMessage  string
	)
	err = s.db.QueryRow(`SELECT id, content_hash, run_id, source, encoding, grammar, date_order,
		confidence, imported_at, first_message, last_message, message_count, participants, stats
		FROM sessions WHERE id = ?`, id).Scan(
		&session.ID, &session.ContentHash, &session.RunID, &session.Source, &encoding, &grammar,
		&session.DateOrder, &session.Confidence, &importedAt, &firstMessage, &lastMessage,
		&session.Metadata.MessageCount, &participants, &stats)
	if err != nil {
		return nil, s.wrap("load", err)
	}
	session.Encoding = Encoding(encoding)
	session.Grammar = GrammarID(grammar)
	session.Metadata.ImportedAt = parseTime(importedAt)
	session.Metadata.FirstMessage = parseTime(firstMessage)
	session.Metadata.LastMessage = parseTime(lastMessage)
	if err := json.Unmarshal([]byte(participants), &session.Metadata.Participants); err != nil {
		return nil, s.wrap("load", err)
	}
	if err := json.Unmarshal([]byte(stats), &session.Stats); err != nil {
		return nil, s.wrap("load", err)
	}

	records, err := s.loadRecords(id)
	if err != nil {
		return nil, s.wrap("load", err)
	}
	session.Records = records
	return &session, nil
}

func (s *Store) loadRecords(id string) ([]MessageRecord, error) {
	rows, err := s.db.Query(`SELECT ts, sender, body, word_count, char_count, emoji_count,
		is_media, contains_url, is_question, reactions, source_line, continuation
		FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]MessageRecord, 0)
	for rows.Next() {
		var (
			r             MessageRecord
			ts, reactions string
		)
		if err := rows.Scan(&ts, &r.Sender, &r.Body, &r.WordCount, &r.CharCount, &r.EmojiCount,
			&r.IsMedia, &r.ContainsURL, &r.IsQuestion, &reactions, &r.SourceLine, &r.Continuation); err != nil {
			return nil, err
		}
		r.Timestamp = parseTime(ts)
		r.Hour = r.Timestamp.Hour()
		r.DayOfWeek = r.Timestamp.Weekday().String()
		r.TimePeriod = TimePeriodForHour(r.Hour)
		if reactions != "[]" {
			if err := json.Unmarshal([]byte(reactions), &r.Reactions); err != nil {
				return nil, err
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteSession removes a session and its records
func (s *Store) DeleteSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return s.wrap("delete", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", id); err != nil {
		return s.wrap("delete", err)
	}
	res, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return s.wrap("delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err := tx.Commit(); err != nil {
		return s.wrap("delete", err)
	}
	return nil
}

// ClearSessions removes every stored session and returns how many were removed
func (s *Store) ClearSessions() (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, s.wrap("delete", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return 0, s.wrap("delete", err)
	}
	res, err := tx.Exec("DELETE FROM sessions")
	if err != nil {
		return 0, s.wrap("delete", err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, s.wrap("delete", err)
	}
	return int(n), nil
}

// Count returns the number of stored sessions and messages
func (s *Store) Count() (sessions, messages int, err error) {
	if err = s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&sessions); err != nil {
		return 0, 0, s.wrap("load", err)
	}
	if err = s.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&messages); err != nil {
		return 0, 0, s.wrap("load", err)
	}
	return sessions, messages, nil
}

func (s *Store) wrap(op string, err error) error {
	return &StorageError{Path: s.path, Op: op, Err: err}
}

const summaryQuery = `SELECT id, content_hash, run_id, source, grammar, imported_at,
	first_message, last_message, message_count, participants FROM sessions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*SessionSummary, error) {
	var (
		sum                                   SessionSummary
		grammar, participants                 string
		importedAt, firstMessage, lastMessage string
	)
	if err := row.Scan(&sum.ID, &sum.ContentHash, &sum.RunID, &sum.Source, &grammar, &importedAt,
		&firstMessage, &lastMessage, &sum.MessageCount, &participants); err != nil {
		return nil, err
	}
	sum.Grammar = GrammarID(grammar)
	sum.ImportedAt = parseTime(importedAt)
	sum.FirstMessage = parseTime(firstMessage)
	sum.LastMessage = parseTime(lastMessage)
	if err := json.Unmarshal([]byte(participants), &sum.Participants); err != nil {
		return nil, err
	}
	return &sum, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
