// Package prefs persists user preferences in a local SQLite database.
// Preferences are plain string key-value pairs; skill enable state is
// stored under "skill_<name>_enabled".
package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed preference store. Safe for concurrent use;
// database/sql serializes access to the single connection.
type Store struct {
	db *sql.DB
}

// Open creates or opens the preference database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open prefs db %s: %w", path, err)
	}
	// modernc.org/sqlite handles one writer; keep a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS preferences (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init prefs schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the value for key, or fallback when unset.
func (s *Store) Get(key, fallback string) string {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fallback
		}
		return fallback
	}
	return value
}

// Set stores a value for key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

// Delete removes a preference. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}

// All returns every preference.
func (s *Store) All() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM preferences`)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// SkillEnabledKey returns the preference key holding a skill's enable state.
func SkillEnabledKey(skill string) string {
	return "skill_" + strings.ToLower(skill) + "_enabled"
}

// SkillEnabled reads a skill's persisted enable state. The second return
// reports whether a preference exists at all.
func (s *Store) SkillEnabled(skill string) (bool, bool) {
	v := s.Get(SkillEnabledKey(skill), "")
	if v == "" {
		return false, false
	}
	return v == "true", true
}

// SetSkillEnabled persists a skill's enable state.
func (s *Store) SetSkillEnabled(skill string, enabled bool) error {
	v := "false"
	if enabled {
		v = "true"
	}
	return s.Set(SkillEnabledKey(skill), v)
}
