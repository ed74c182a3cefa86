package database

import (
	"context"
	"database/sql"
)

// Categories and items are only ever logically deleted, so the schema keeps
// every row and active queries filter on the deleted flag. The partial unique
// index backstops the per-owner duplicate check when two processes seed or
// create at the same time.
const schema = `
CREATE TABLE IF NOT EXISTS categories (
    id      SERIAL PRIMARY KEY,
    user_id TEXT    NOT NULL,
    name    TEXT    NOT NULL,
    deleted BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_categories_user_deleted ON categories (user_id, deleted);

CREATE UNIQUE INDEX IF NOT EXISTS uq_categories_owner_name_active ON categories (user_id, name) WHERE NOT deleted;

CREATE TABLE IF NOT EXISTS items (
    id          SERIAL PRIMARY KEY,
    category_id INTEGER NOT NULL REFERENCES categories (id),
    user_id     TEXT    NOT NULL,
    name        TEXT    NOT NULL,
    quantity    INTEGER NOT NULL DEFAULT 0,
    amount      INTEGER,
    place       TEXT,
    deleted     BOOLEAN NOT NULL DEFAULT FALSE,
    created     TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_items_category_deleted ON items (category_id, deleted);
`

// EnsureSchema creates the tables if they do not exist yet. Safe to run on
// every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
