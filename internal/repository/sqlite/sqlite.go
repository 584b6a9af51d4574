// Package sqlite implements the repository interfaces over an embedded
// SQLite database, the alternate backend to the default JSON document
// store. SQLite's transactions give the same guarantees the file store
// gets from its atomic rewrite: serialized writers and no torn state.
//
// The driver is modernc.org/sqlite, a pure-Go translation of SQLite,
// so no C toolchain is needed and cross-compilation stays painless.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with
	// database/sql at init time.
	_ "modernc.org/sqlite"

	"github.com/sakif/dev-directory/internal/repository"
)

// DB wraps the connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" works for tests), runs
// migrations, and seeds the default dataset if the store is empty.
func New(dbPath string, hasher repository.PasswordHasher) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed concurrently with a write, which matches
	// the concurrency model: reads never block on each other.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	if err := db.seedIfEmpty(hasher); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: seeding: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer this right
// after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// tech_stack holds a JSON array of strings; ordering inside the
	// array is preserved but queries only ever substring-match it.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS developers (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			role         TEXT NOT NULL,
			tech_stack   TEXT NOT NULL DEFAULT '[]',
			experience   INTEGER NOT NULL DEFAULT 0,
			about        TEXT NOT NULL DEFAULT '',
			joining_date TEXT NOT NULL DEFAULT '',
			created_by   TEXT NOT NULL DEFAULT '' REFERENCES users(id),
			created_at   DATETIME NOT NULL,
			updated_at   DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_developers_created_at ON developers(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating developers table: %w", err)
	}

	return nil
}

// seedIfEmpty loads the default dataset into a fresh database. An
// existing admin (or any user) means the store has already been
// seeded or used; leave it alone.
func (db *DB) seedIfEmpty(hasher repository.PasswordHasher) error {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin, devs, err := repository.SeedData(hasher)
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		admin.ID, admin.Name, admin.Email, admin.PasswordHash, admin.CreatedAt, admin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting seed admin: %w", err)
	}

	for _, d := range devs {
		stack, err := encodeStack(d.TechStack)
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			`INSERT INTO developers (id, name, role, tech_stack, experience, about, joining_date, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.Name, string(d.Role), stack, d.Experience, d.About, d.JoiningDate, d.CreatedBy, d.CreatedAt, d.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting seed developer %s: %w", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	return nil
}
