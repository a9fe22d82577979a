package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Hook binds a gesture command to a plugin action.
type Hook struct {
	ID         string          `json:"id"`
	Command    string          `json:"command"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
}

// HookRepository provides CRUD operations for hooks.
type HookRepository struct {
	db *sql.DB
}

// Hooks returns the hook repository for this store.
func (s *Store) Hooks() *HookRepository {
	return &HookRepository{db: s.db}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanHook(row scanner) (*Hook, error) {
	h := &Hook{}
	var config string
	var enabled int
	if err := row.Scan(&h.ID, &h.Command, &h.PluginName, &h.ActionName, &config, &enabled, &h.CreatedAt); err != nil {
		return nil, err
	}
	h.Config = json.RawMessage(config)
	h.Enabled = enabled == 1
	return h, nil
}

// Create inserts a new hook. An empty ID is replaced by a new UUID.
func (r *HookRepository) Create(h *Hook) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if len(h.Config) == 0 {
		h.Config = json.RawMessage("{}")
	}
	h.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO hooks (id, command, plugin_name, action_name, config, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Command, h.PluginName, h.ActionName, string(h.Config), boolToInt(h.Enabled), h.CreatedAt,
	)
	return err
}

// GetByID retrieves a hook by its ID.
func (r *HookRepository) GetByID(id string) (*Hook, error) {
	h, err := scanHook(r.db.QueryRow(
		`SELECT id, command, plugin_name, action_name, config, enabled, created_at
		 FROM hooks WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

// List retrieves all hooks in creation order.
func (r *HookRepository) List() ([]*Hook, error) {
	return r.query(
		`SELECT id, command, plugin_name, action_name, config, enabled, created_at
		 FROM hooks ORDER BY created_at, rowid`,
	)
}

// ListByCommand retrieves the enabled hooks bound to a command.
func (r *HookRepository) ListByCommand(command string) ([]*Hook, error) {
	return r.query(
		`SELECT id, command, plugin_name, action_name, config, enabled, created_at
		 FROM hooks WHERE command = ? AND enabled = 1 ORDER BY created_at, rowid`,
		command,
	)
}

func (r *HookRepository) query(q string, args ...any) ([]*Hook, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hooks []*Hook
	for rows.Next() {
		h, err := scanHook(rows)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hooks, nil
}

// Update modifies an existing hook.
func (r *HookRepository) Update(h *Hook) error {
	if len(h.Config) == 0 {
		h.Config = json.RawMessage("{}")
	}

	result, err := r.db.Exec(
		`UPDATE hooks SET command = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		h.Command, h.PluginName, h.ActionName, string(h.Config), boolToInt(h.Enabled), h.ID,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Delete removes a hook by its ID.
func (r *HookRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM hooks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}
