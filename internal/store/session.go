package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is a saved typing session.
type Session struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Layout     string    `json:"layout"`
	Theme      string    `json:"theme"`
	Chars      int       `json:"chars"`
	Words      int       `json:"words"`
	Backspaces int       `json:"backspaces"`
	Keystrokes int       `json:"keystrokes"`
	WPM        float64   `json:"wpm"`
	Accuracy   float64   `json:"accuracy"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const sessionColumns = `id, text, layout, theme, chars, words, backspaces, keystrokes, wpm, accuracy, started_at, updated_at`

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	sess := &Session{}
	err := row.Scan(&sess.ID, &sess.Text, &sess.Layout, &sess.Theme,
		&sess.Chars, &sess.Words, &sess.Backspaces, &sess.Keystrokes,
		&sess.WPM, &sess.Accuracy, &sess.StartedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Create inserts a new session. An empty ID is replaced by a new UUID and a
// zero StartedAt by the current time.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	now := time.Now()
	if sess.StartedAt.IsZero() {
		sess.StartedAt = now
	}
	sess.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Text, sess.Layout, sess.Theme,
		sess.Chars, sess.Words, sess.Backspaces, sess.Keystrokes,
		sess.WPM, sess.Accuracy, sess.StartedAt, sess.UpdatedAt,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// Latest retrieves the most recently updated session.
func (r *SessionRepository) Latest() (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(
		`SELECT ` + sessionColumns + ` FROM sessions ORDER BY updated_at DESC, rowid DESC LIMIT 1`,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List retrieves sessions, most recently updated first. A non-positive
// limit returns every session.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY updated_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Update saves the session's text, settings and statistics.
func (r *SessionRepository) Update(sess *Session) error {
	sess.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE sessions SET text = ?, layout = ?, theme = ?, chars = ?, words = ?,
		 backspaces = ?, keystrokes = ?, wpm = ?, accuracy = ?, updated_at = ?
		 WHERE id = ?`,
		sess.Text, sess.Layout, sess.Theme, sess.Chars, sess.Words,
		sess.Backspaces, sess.Keystrokes, sess.WPM, sess.Accuracy, sess.UpdatedAt,
		sess.ID,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Delete removes a session and its keystrokes.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}
