package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    shop_name            TEXT NOT NULL,
    username             TEXT NOT NULL UNIQUE,
    password_hash        TEXT NOT NULL,
    role                 TEXT NOT NULL DEFAULT 'shopkeeper' CHECK (role IN ('admin', 'shopkeeper')),
    active               INTEGER NOT NULL DEFAULT 1,
    gold_rate_per_tola   TEXT NOT NULL DEFAULT '70000',
    silver_rate_per_tola TEXT NOT NULL DEFAULT '1000',
    created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id  INTEGER NOT NULL REFERENCES accounts(id),
    weight_tola TEXT NOT NULL CHECK (CAST(weight_tola AS NUMERIC) > 0),
    material    TEXT NOT NULL CHECK (material IN ('gold', 'silver')),
    labor_cost  TEXT NOT NULL CHECK (CAST(labor_cost AS NUMERIC) >= 0),
    description TEXT,
    photo_ref   TEXT,
    sold        INTEGER NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_account_sold
    ON items(account_id, sold);

CREATE INDEX IF NOT EXISTS idx_items_created_at
    ON items(created_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
