package main

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// ChatRow is one persisted chat line
type ChatRow struct {
	ID        int64
	Sender    string
	Message   string
	CreatedAt time.Time
}

// FailedLoginRow is one persisted failed admin login attempt
type FailedLoginRow struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// MatchRow is one persisted finished room
type MatchRow struct {
	ID        int64
	RoomID    string
	Winner    string
	Duration  float64 // seconds
	Reason    string  // elimination | timeout | disconnect
	CreatedAt time.Time
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps the recorder's writes from stalling readers
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS failed_logins (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id TEXT NOT NULL,
		winner TEXT NOT NULL DEFAULT '',
		duration REAL NOT NULL DEFAULT 0,
		reason TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx, so the insert statements
// live in one place whether a write is standalone or batched.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func insertChat(e execer, sender, message string) error {
	_, err := e.Exec(
		"INSERT INTO chat_messages (sender, message) VALUES (?, ?)",
		sender, message)
	return err
}

func insertFailedLogin(e execer, name string) error {
	_, err := e.Exec(
		"INSERT INTO failed_logins (name) VALUES (?)", name)
	return err
}

func insertMatch(e execer, roomID, winner string, duration float64, reason string) error {
	_, err := e.Exec(
		"INSERT INTO matches (room_id, winner, duration, reason) VALUES (?, ?, ?, ?)",
		roomID, winner, duration, reason)
	return err
}

// RecentChat returns the latest n chat lines, newest first
func (db *DB) RecentChat(n int) ([]ChatRow, error) {
	rows, err := db.conn.Query(
		"SELECT id, sender, message, created_at FROM chat_messages ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChatRow
	for rows.Next() {
		var r ChatRow
		if err := rows.Scan(&r.ID, &r.Sender, &r.Message, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentFailedLogins returns the latest n failed admin login attempts,
// newest first
func (db *DB) RecentFailedLogins(n int) ([]FailedLoginRow, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, created_at FROM failed_logins ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FailedLoginRow
	for rows.Next() {
		var r FailedLoginRow
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentMatches returns the latest n finished rooms, newest first
func (db *DB) RecentMatches(n int) ([]MatchRow, error) {
	rows, err := db.conn.Query(
		"SELECT id, room_id, winner, duration, reason, created_at FROM matches ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRow
	for rows.Next() {
		var r MatchRow
		if err := rows.Scan(&r.ID, &r.RoomID, &r.Winner, &r.Duration, &r.Reason, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
