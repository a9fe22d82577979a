package store

import (
	"database/sql"
	"time"
)

// Keystroke is one logged token of a session.
type Keystroke struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	TypedAt   time.Time `json:"typed_at"`
}

// KeystrokeRepository stores the per-session keystroke log.
type KeystrokeRepository struct {
	db *sql.DB
}

// Keystrokes returns the keystroke repository for this store.
func (s *Store) Keystrokes() *KeystrokeRepository {
	return &KeystrokeRepository{db: s.db}
}

// Append inserts keystrokes for a session in a single transaction.
func (r *KeystrokeRepository) Append(sessionID string, keystrokes []Keystroke) error {
	if len(keystrokes) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO keystrokes (session_id, token, typed_at) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, k := range keystrokes {
		if _, err := stmt.Exec(sessionID, k.Token, k.TypedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListBySession retrieves a session's keystrokes in typing order.
func (r *KeystrokeRepository) ListBySession(sessionID string) ([]Keystroke, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, token, typed_at
		 FROM keystrokes
		 WHERE session_id = ?
		 ORDER BY typed_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keystrokes []Keystroke
	for rows.Next() {
		var k Keystroke
		if err := rows.Scan(&k.ID, &k.SessionID, &k.Token, &k.TypedAt); err != nil {
			return nil, err
		}
		keystrokes = append(keystrokes, k)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keystrokes, nil
}

// CountBySession returns how many keystrokes a session has logged.
func (r *KeystrokeRepository) CountBySession(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM keystrokes WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// DeleteBySession removes all keystrokes of a session.
func (r *KeystrokeRepository) DeleteBySession(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM keystrokes WHERE session_id = ?`, sessionID)
	return err
}
