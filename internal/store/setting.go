package store

import (
	"database/sql"
	"errors"
)

// Setting keys persisted between runs.
const (
	SettingLayout           = "layout"
	SettingTheme            = "theme"
	SettingAdvancedGestures = "advanced_gestures"
	SettingSmartZones       = "smart_zones"
)

// SettingRepository stores key-value application settings.
type SettingRepository struct {
	db *sql.DB
}

// Settings returns the setting repository for this store.
func (s *Store) Settings() *SettingRepository {
	return &SettingRepository{db: s.db}
}

// Get returns the value stored under key.
func (r *SettingRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// GetOr returns the value stored under key, or fallback when it is unset.
func (r *SettingRepository) GetOr(key, fallback string) (string, error) {
	value, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	return value, err
}

// Set stores value under key, replacing any previous value.
func (r *SettingRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// All returns every stored setting.
func (r *SettingRepository) All() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Delete removes a setting.
func (r *SettingRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return affected(result)
}
