package db

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// nowExpr matches the column defaults: millisecond precision, so an edit in
// the same second as creation still moves updated_at.
const nowExpr = "strftime('%Y-%m-%d %H:%M:%f', 'now')"

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// Setting keys
const (
	SettingLastTaskID = "last_task_id"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// New opens (creating if needed) the database at path and initializes the schema
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one writer at a time; sqlite serializes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db}, nil
}

// GetSetting retrieves a setting value by key
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// LastTaskID returns the remembered task selection, or 0
func (db *DB) LastTaskID() (int64, error) {
	value, err := db.GetSetting(SettingLastTaskID)
	if err != nil || value == "" {
		return 0, err
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", SettingLastTaskID, err)
	}
	return id, nil
}

// SetLastTaskID remembers the task selection; 0 forgets it
func (db *DB) SetLastTaskID(id int64) error {
	if id == 0 {
		return db.SetSetting(SettingLastTaskID, "")
	}
	return db.SetSetting(SettingLastTaskID, strconv.FormatInt(id, 10))
}
