// Package testdb provides an in-memory SQLite database carrying the same schema as
// migrations/postgres, for repository tests that need real constraints and cascades.
package testdb

//nolint:revive
import (
	"testing"
	"time"

	"taskboard/infras/postgres"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const dsn = "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite"

const schema = `
CREATE TABLE users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    full_name TEXT,
    level TEXT NOT NULL DEFAULT 'user',
    active BOOLEAN NOT NULL DEFAULT 1,
    last_login TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE todos (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    title VARCHAR(500) NOT NULL CHECK (trim(title) <> ''),
    description VARCHAR(1000),
    completed BOOLEAN NOT NULL DEFAULT 0,
    start_at TIMESTAMP,
    due_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE tags (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    name VARCHAR(100) NOT NULL,
    color VARCHAR(7),
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX tags_user_id_name_idx ON tags (user_id, name);

CREATE TABLE todo_tags (
    todo_id TEXT NOT NULL REFERENCES todos (id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (todo_id, tag_id)
);
`

// New opens a fresh database for the test. Read and Write share one connection
// so every statement sees the same in-memory database.
func New(t testing.TB) *postgres.Connection {
	t.Helper()

	sqlx.BindDriver("sqlite", sqlx.QUESTION)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return &postgres.Connection{Read: db, Write: db}
}

// CreateUser inserts a user row so todos and tags can reference it.
func CreateUser(t testing.TB, conn *postgres.Connection) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := conn.Write.Exec(
		`INSERT INTO users (id, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, id+"@example.com", "hash", now, now,
	)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}

	return id
}

// DeleteUser removes a user directly, exercising the ON DELETE CASCADE chain.
func DeleteUser(t testing.TB, conn *postgres.Connection, id string) {
	t.Helper()

	if _, err := conn.Write.Exec(`DELETE FROM users WHERE id = ?`, id); err != nil {
		t.Fatalf("delete user: %v", err)
	}
}

// Count returns the number of rows in table matching the optional where clause.
func Count(t testing.TB, conn *postgres.Connection, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	var count int
	if err := conn.Read.Get(&count, query, args...); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}

	return count
}
