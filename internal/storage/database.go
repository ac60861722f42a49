package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens the pre-built procedure database at the given path. The
// database is produced offline by the crawler/index-build pipeline and is
// read-only for the lifetime of this process.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the chunk and procedure tables when they do not
// exist. The service never writes to them; this exists so tests can build
// fixtures and so a missing table surfaces at startup rather than on the
// first request.
func EnsureSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			source TEXT,
			text TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS procedures (
			source TEXT PRIMARY KEY,
			name TEXT,
			method TEXT,
			documents TEXT,
			steps TEXT,
			agency TEXT,
			requirements TEXT,
			related TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_parent ON chunks(parent_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
