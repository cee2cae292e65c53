// Package store is the persistence layer for harvest runs: the
// append-only seen-item table that makes discovery incremental, and a
// run log for observability.
//
// The store receives an already-opened *sql.DB (see dbopen). It is safe
// for sequential re-use against the same entity; it provides no
// cross-process locking, so two concurrent runs against the same entity
// may race (last write wins, duplicates tolerated, never lost).
package store

import "database/sql"

// Schema is the harvest schema. Idempotent: every statement guards with
// IF NOT EXISTS.
const Schema = `
-- Items previously admitted, per source entity. Append-only.
CREATE TABLE IF NOT EXISTS seen_items (
    entity        TEXT NOT NULL,
    item_id       TEXT NOT NULL,
    timestamp     TEXT NOT NULL DEFAULT '',
    first_seen_at INTEGER NOT NULL,
    PRIMARY KEY (entity, item_id)
);

-- One row per completed run.
CREATE TABLE IF NOT EXISTS run_log (
    id          TEXT PRIMARY KEY,
    entity      TEXT NOT NULL,
    strategy    TEXT NOT NULL,
    mode        TEXT NOT NULL,
    state       TEXT NOT NULL,
    rounds      INTEGER NOT NULL DEFAULT 0,
    admitted    INTEGER NOT NULL DEFAULT 0,
    returned    INTEGER NOT NULL DEFAULT 0,
    started_at  INTEGER NOT NULL,
    finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_log_entity ON run_log(entity, started_at DESC);
`

// Store wraps the harvest database.
type Store struct {
	DB *sql.DB
}

// New creates a Store from an already-opened database connection.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// ApplySchema applies the harvest schema to a database.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
