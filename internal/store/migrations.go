package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per typing session with its latest text
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL DEFAULT '',
			layout TEXT NOT NULL DEFAULT '',
			theme TEXT NOT NULL DEFAULT '',
			chars INTEGER NOT NULL DEFAULT 0,
			words INTEGER NOT NULL DEFAULT 0,
			backspaces INTEGER NOT NULL DEFAULT 0,
			keystrokes INTEGER NOT NULL DEFAULT 0,
			wpm REAL NOT NULL DEFAULT 0,
			accuracy REAL NOT NULL DEFAULT 100,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Keystrokes table - append-only log of committed tokens per session
		`CREATE TABLE IF NOT EXISTS keystrokes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			token TEXT NOT NULL,
			typed_at DATETIME NOT NULL
		)`,

		// Hooks table - plugin actions to run when a gesture command fires
		`CREATE TABLE IF NOT EXISTS hooks (
			id TEXT PRIMARY KEY,
			command TEXT NOT NULL CHECK(command IN ('clear', 'save', 'cycle-theme', 'pause')),
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_keystrokes_session_id ON keystrokes(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_hooks_command ON hooks(command)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
