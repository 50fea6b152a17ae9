// Package store persists session results and tuning outcomes to SQLite.
// Rows carry the full result JSON verbatim alongside a few queryable columns;
// the store never alters scoring.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chromacheck/chromacheck/internal/session"
	"github.com/chromacheck/chromacheck/internal/tuner"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	mode            TEXT NOT NULL,
	bucket          TEXT NOT NULL,
	control_score   INTEGER NOT NULL,
	confusion_score INTEGER NOT NULL,
	completed       INTEGER NOT NULL,
	result_json     TEXT NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tuning_runs (
	id             TEXT PRIMARY KEY,
	session_id     TEXT,
	best_score     INTEGER NOT NULL,
	baseline_score INTEGER NOT NULL,
	rounds         INTEGER NOT NULL,
	outcome_json   TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(id)
);
`

// Store manages the results database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession persists one session result under its own ID.
func (s *Store) SaveSession(res *session.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	completed := 0
	if res.Completed {
		completed = 1
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (id, mode, bucket, control_score, confusion_score, completed, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, string(res.Mode), string(res.Severity.Bucket),
		res.Severity.ControlScore, res.Severity.ConfusionScore,
		completed, string(payload), res.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SessionRow is a summary row for listings.
type SessionRow struct {
	ID             string
	Mode           string
	Bucket         string
	ControlScore   int
	ConfusionScore int
	CreatedAt      time.Time
}

// ListSessions returns the most recent sessions, newest first.
func (s *Store) ListSessions(limit int) ([]SessionRow, error) {
	rows, err := s.db.Query(
		`SELECT id, mode, bucket, control_score, confusion_score, created_at
		 FROM sessions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		var created string
		if err := rows.Scan(&r.ID, &r.Mode, &r.Bucket, &r.ControlScore, &r.ConfusionScore, &created); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetSession loads one full session result by ID.
func (s *Store) GetSession(id string) (*session.Result, error) {
	var payload string
	err := s.db.QueryRow(`SELECT result_json FROM sessions WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	var res session.Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &res, nil
}

// SaveTuning persists one tuning outcome, optionally linked to the baseline
// session it started from. Returns the new row's ID.
func (s *Store) SaveTuning(sessionID string, o *tuner.Outcome) (string, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("marshal outcome: %w", err)
	}
	id := uuid.New().String()
	var sid any
	if sessionID != "" {
		sid = sessionID
	}
	_, err = s.db.Exec(
		`INSERT INTO tuning_runs (id, session_id, best_score, baseline_score, rounds, outcome_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, sid, o.BestScore, o.BaselineScore, o.Rounds,
		string(payload), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert tuning run: %w", err)
	}
	return id, nil
}

// TuningRow is a summary row for listings.
type TuningRow struct {
	ID            string
	SessionID     string
	BestScore     int
	BaselineScore int
	Rounds        int
	CreatedAt     time.Time
}

// ListTuning returns the most recent tuning runs, newest first.
func (s *Store) ListTuning(limit int) ([]TuningRow, error) {
	rows, err := s.db.Query(
		`SELECT id, COALESCE(session_id, ''), best_score, baseline_score, rounds, created_at
		 FROM tuning_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query tuning runs: %w", err)
	}
	defer rows.Close()

	var out []TuningRow
	for rows.Next() {
		var r TuningRow
		var created string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.BestScore, &r.BaselineScore, &r.Rounds, &created); err != nil {
			return nil, fmt.Errorf("scan tuning run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTuning loads one full tuning outcome by ID.
func (s *Store) GetTuning(id string) (*tuner.Outcome, error) {
	var payload string
	err := s.db.QueryRow(`SELECT outcome_json FROM tuning_runs WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tuning run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query tuning run: %w", err)
	}
	var o tuner.Outcome
	if err := json.Unmarshal([]byte(payload), &o); err != nil {
		return nil, fmt.Errorf("unmarshal outcome: %w", err)
	}
	return &o, nil
}
