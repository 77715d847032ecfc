// Package storage provides the namespaced key-value store handed to plugins
// through the capability context. Values are opaque strings (the API layer
// JSON-encodes structured values); isolation between plugins comes from the
// namespace column, not separate files.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver.
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS plugin_kv (
		plugin TEXT NOT NULL,
		key    TEXT NOT NULL,
		value  TEXT NOT NULL,
		PRIMARY KEY (plugin, key)
	)`,
	`CREATE TABLE IF NOT EXISTS plugin_task_kv (
		plugin  TEXT NOT NULL,
		task_id TEXT NOT NULL,
		key     TEXT NOT NULL,
		value   TEXT NOT NULL,
		PRIMARY KEY (plugin, task_id, key)
	)`,
}

// ErrClosed is returned after Close.
var ErrClosed = errors.New("storage: database is closed")

// DB is the shared plugin storage database.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the storage database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening storage database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing storage schema: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Namespace returns the scoped store for one plugin.
func (d *DB) Namespace(plugin string) *Namespace {
	return &Namespace{db: d, plugin: plugin}
}

// Namespace is a single plugin's view of the store.
type Namespace struct {
	db     *DB
	plugin string
}

// Plugin returns the owning plugin name.
func (n *Namespace) Plugin() string {
	return n.plugin
}

// Get returns the value for key. The second return is false if the key is absent.
func (n *Namespace) Get(key string) (string, bool, error) {
	return getRow(n.db,
		`SELECT value FROM plugin_kv WHERE plugin = ? AND key = ?`, n.plugin, key)
}

// Set stores value under key, replacing any existing value.
func (n *Namespace) Set(key, value string) error {
	return execRow(n.db,
		`INSERT INTO plugin_kv (plugin, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (plugin, key) DO UPDATE SET value = excluded.value`,
		n.plugin, key, value)
}

// Delete removes key. Deleting an absent key is not an error.
func (n *Namespace) Delete(key string) error {
	return execRow(n.db,
		`DELETE FROM plugin_kv WHERE plugin = ? AND key = ?`, n.plugin, key)
}

// Keys returns all keys in the namespace, sorted.
func (n *Namespace) Keys() ([]string, error) {
	return listKeys(n.db,
		`SELECT key FROM plugin_kv WHERE plugin = ? ORDER BY key`, n.plugin)
}

// Task returns the task-scoped variant of this namespace.
func (n *Namespace) Task(taskID string) *TaskNamespace {
	return &TaskNamespace{db: n.db, plugin: n.plugin, taskID: taskID}
}

// Txn runs fn inside a single SQLite transaction. The transaction commits if
// fn returns nil and rolls back otherwise.
func (n *Namespace) Txn(fn func(tx *Tx) error) error {
	if n.db.db == nil {
		return ErrClosed
	}
	sqlTx, err := n.db.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning storage transaction: %w", err)
	}

	tx := &Tx{tx: sqlTx, plugin: n.plugin}
	if err := fn(tx); err != nil {
		sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing storage transaction: %w", err)
	}
	return nil
}

// TaskNamespace is a plugin namespace further scoped to one task.
type TaskNamespace struct {
	db     *DB
	plugin string
	taskID string
}

// Get returns the value for key within the task scope.
func (n *TaskNamespace) Get(key string) (string, bool, error) {
	return getRow(n.db,
		`SELECT value FROM plugin_task_kv WHERE plugin = ? AND task_id = ? AND key = ?`,
		n.plugin, n.taskID, key)
}

// Set stores value under key within the task scope.
func (n *TaskNamespace) Set(key, value string) error {
	return execRow(n.db,
		`INSERT INTO plugin_task_kv (plugin, task_id, key, value) VALUES (?, ?, ?, ?)
		 ON CONFLICT (plugin, task_id, key) DO UPDATE SET value = excluded.value`,
		n.plugin, n.taskID, key, value)
}

// Delete removes key within the task scope.
func (n *TaskNamespace) Delete(key string) error {
	return execRow(n.db,
		`DELETE FROM plugin_task_kv WHERE plugin = ? AND task_id = ? AND key = ?`,
		n.plugin, n.taskID, key)
}

// Keys returns all keys within the task scope, sorted.
func (n *TaskNamespace) Keys() ([]string, error) {
	return listKeys(n.db,
		`SELECT key FROM plugin_task_kv WHERE plugin = ? AND task_id = ? ORDER BY key`,
		n.plugin, n.taskID)
}

// Tx is the transactional view of a plugin namespace.
type Tx struct {
	tx     *sql.Tx
	plugin string
}

// Get returns the value for key within the transaction.
func (t *Tx) Get(key string) (string, bool, error) {
	var value string
	err := t.tx.QueryRow(
		`SELECT value FROM plugin_kv WHERE plugin = ? AND key = ?`,
		t.plugin, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key within the transaction.
func (t *Tx) Set(key, value string) error {
	_, err := t.tx.Exec(
		`INSERT INTO plugin_kv (plugin, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (plugin, key) DO UPDATE SET value = excluded.value`,
		t.plugin, key, value)
	return err
}

// Delete removes key within the transaction.
func (t *Tx) Delete(key string) error {
	_, err := t.tx.Exec(
		`DELETE FROM plugin_kv WHERE plugin = ? AND key = ?`, t.plugin, key)
	return err
}

func getRow(d *DB, query string, args ...any) (string, bool, error) {
	if d.db == nil {
		return "", false, ErrClosed
	}
	var value string
	err := d.db.QueryRow(query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func execRow(d *DB, query string, args ...any) error {
	if d.db == nil {
		return ErrClosed
	}
	_, err := d.db.Exec(query, args...)
	return err
}

func listKeys(d *DB, query string, args ...any) ([]string, error) {
	if d.db == nil {
		return nil, ErrClosed
	}
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
