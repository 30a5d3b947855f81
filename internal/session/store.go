package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/game"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/scenario"
)

// Store provides SQLite-backed persistence for identity and sessions.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS identity (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		profile TEXT NOT NULL,
		probes TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		probe TEXT NOT NULL,
		answer TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		profile_id TEXT NOT NULL,
		generation INTEGER DEFAULT 0,
		age INTEGER DEFAULT 0,
		choice TEXT,
		event TEXT NOT NULL,
		status_change TEXT NOT NULL,
		relationship_change TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// LoadUser returns the stored user, or nil when nobody is logged in.
func (s *Store) LoadUser() (*api.User, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM identity WHERE key = ?`, IdentityKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan identity: %w", err)
	}

	var u api.User
	if err := json.Unmarshal([]byte(value), &u); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &u, nil
}

// SaveUser stores u as the logged-in user, replacing any previous one.
func (s *Store) SaveUser(u api.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO identity (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		IdentityKey, string(data), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// ClearUser forgets the stored user.
func (s *Store) ClearUser() error {
	if _, err := s.db.Exec(`DELETE FROM identity WHERE key = ?`, IdentityKey); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

// SaveSnapshot writes snap into the user's active session, creating the
// session on first save. The stored answers are replaced.
func (s *Store) SaveSnapshot(snap game.Snapshot) error {
	profileJSON, err := json.Marshal(snap.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	probes := snap.Probes
	if probes == nil {
		probes = []string{}
	}
	probesJSON, err := json.Marshal(probes)
	if err != nil {
		return fmt.Errorf("encode probes: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	id, err := activeID(tx, snap.UserID.String())
	if err != nil {
		return err
	}
	if id == "" {
		id = uuid.New().String()
		_, err = tx.Exec(
			`INSERT INTO sessions (id, user_id, step, profile, probes, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, snap.UserID.String(), int(snap.Step), string(profileJSON), string(probesJSON), StatusActive, now, now,
		)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
	} else {
		_, err = tx.Exec(
			`UPDATE sessions SET step = ?, profile = ?, probes = ?, updated_at = ?
			 WHERE id = ?`,
			int(snap.Step), string(profileJSON), string(probesJSON), now, id,
		)
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM answers WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear answers: %w", err)
	}
	for probe, answer := range snap.Answers {
		_, err := tx.Exec(
			`INSERT INTO answers (session_id, probe, answer, timestamp) VALUES (?, ?, ?, ?)`,
			id, probe, answer, now,
		)
		if err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadSnapshot returns the user's active session, or nil when there is none.
func (s *Store) LoadSnapshot(userID profile.ID) (*game.Snapshot, error) {
	row := s.db.QueryRow(
		`SELECT id, step, profile, probes, updated_at
		 FROM sessions
		 WHERE user_id = ? AND status = ?
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		userID.String(), StatusActive,
	)

	var (
		id, profileJSON, probesJSON string
		step                        int
		updated                     time.Time
	)
	err := row.Scan(&id, &step, &profileJSON, &probesJSON, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	snap := &game.Snapshot{UserID: userID, Step: game.Step(step), Saved: updated}
	if err := json.Unmarshal([]byte(profileJSON), &snap.Profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := json.Unmarshal([]byte(probesJSON), &snap.Probes); err != nil {
		return nil, fmt.Errorf("decode probes: %w", err)
	}

	answers, err := s.GetAnswers(id)
	if err != nil {
		return nil, err
	}
	snap.Answers = make(map[string]string, len(answers))
	for _, a := range answers {
		snap.Answers[a.Probe] = a.Answer
	}
	return snap, nil
}

// ClearSnapshot closes every session and drops their answers and journals.
func (s *Store) ClearSnapshot() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM answers`,
		`DELETE FROM journal`,
		`DELETE FROM sessions`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear sessions: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// AppendJournal records a committed scenario under the active session of
// entry's user.
func (s *Store) AppendJournal(entry game.JournalEntry) error {
	if entry.UserID == "" {
		return fmt.Errorf("append journal: entry has no user")
	}
	id, err := activeID(s.db, entry.UserID.String())
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("append journal: no active session for user %s", entry.UserID)
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	_, err = s.db.Exec(
		`INSERT INTO journal (session_id, profile_id, generation, age, choice, event, status_change, relationship_change, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, entry.ProfileID.String(), entry.Generation, entry.Age, entry.Choice,
		entry.Scenario.Event, entry.Scenario.StatusChange, entry.Scenario.RelationshipChange, entry.Time,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Journal returns the last limit entries that the user's active session
// recorded for profileID, oldest first. Each generation and each continued
// game keeps its own journal. A limit of zero or less returns all of them.
func (s *Store) Journal(userID, profileID profile.ID, limit int) ([]game.JournalEntry, error) {
	id, err := activeID(s.db, userID.String())
	if err != nil || id == "" {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(
		`SELECT profile_id, generation, age, COALESCE(choice, ''), event, status_change, relationship_change, timestamp
		 FROM journal
		 WHERE session_id = ? AND profile_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		id, profileID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []game.JournalEntry
	for rows.Next() {
		var (
			e   game.JournalEntry
			pid string
			sc  scenario.Scenario
		)
		if err := rows.Scan(&pid, &e.Generation, &e.Age, &e.Choice, &sc.Event, &sc.StatusChange, &sc.RelationshipChange, &e.Time); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.UserID = userID
		e.ProfileID = profile.ID(pid)
		e.Scenario = sc
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	// Newest first from the query; callers read oldest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// GetAnswers retrieves all answers for a session.
func (s *Store) GetAnswers(sessionID string) ([]Answer, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, probe, answer, timestamp
		 FROM answers
		 WHERE session_id = ?
		 ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var answers []Answer
	for rows.Next() {
		var ans Answer
		if err := rows.Scan(&ans.ID, &ans.SessionID, &ans.Probe, &ans.Answer, &ans.Timestamp); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, ans)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return answers, nil
}

// Current summarizes the user's active session, or returns nil when there
// is none. Years counts the journal of the tracked profile only.
func (s *Store) Current(userID profile.ID) (*Summary, error) {
	row := s.db.QueryRow(
		`SELECT s.id, s.user_id, s.step, s.profile, s.created_at, s.updated_at,
		        (SELECT COUNT(*) FROM answers a WHERE a.session_id = s.id)
		 FROM sessions s
		 WHERE s.status = ? AND s.user_id = ?
		 ORDER BY s.updated_at DESC
		 LIMIT 1`,
		StatusActive, userID.String(),
	)

	var (
		sum         Summary
		step        int
		profileJSON string
	)
	err := row.Scan(&sum.ID, &sum.UserID, &step, &profileJSON, &sum.CreatedAt, &sum.UpdatedAt, &sum.Answers)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	sum.Step = game.Step(step).String()

	var p profile.Profile
	if err := json.Unmarshal([]byte(profileJSON), &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	sum.ProfileID = p.ID.String()

	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM journal WHERE session_id = ? AND profile_id = ?`,
		sum.ID, sum.ProfileID,
	).Scan(&sum.Years)
	if err != nil {
		return nil, fmt.Errorf("count journal: %w", err)
	}
	return &sum, nil
}

type queryer interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

// activeID returns the id of userID's most recently updated active
// session, or "" when none exists.
func activeID(q queryer, userID string) (string, error) {
	query := `SELECT id FROM sessions
		WHERE status = ? AND user_id = ?
		ORDER BY updated_at DESC LIMIT 1`

	var id string
	err := q.QueryRow(query, StatusActive, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find active session: %w", err)
	}
	return id, nil
}
