package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS inventory (
    id         TEXT PRIMARY KEY,
    sku        TEXT NOT NULL UNIQUE,
    title      TEXT NOT NULL,
    category   TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'staged' CHECK (status IN ('staged', 'draft', 'active', 'sold')),
    cost_cents INTEGER NOT NULL DEFAULT 0,
    quantity   INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 0),
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
    id                        TEXT PRIMARY KEY,
    date                      TEXT NOT NULL,
    inventory_id              TEXT,
    sku                       TEXT NOT NULL,
    qty                       INTEGER NOT NULL DEFAULT 1 CHECK (qty >= 1),
    sold_price_cents          INTEGER NOT NULL DEFAULT 0,
    buyer_shipping_cents      INTEGER NOT NULL DEFAULT 0,
    platform_fees_cents       INTEGER NOT NULL DEFAULT 0,
    promo_fee_cents           INTEGER NOT NULL DEFAULT 0,
    shipping_label_cost_cents INTEGER NOT NULL DEFAULT 0,
    other_costs_cents         INTEGER NOT NULL DEFAULT 0,
    order_ref                 TEXT NOT NULL,
    note                      TEXT NOT NULL DEFAULT '',
    created_at                DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    id                  TEXT PRIMARY KEY,
    date                TEXT NOT NULL,
    category            TEXT NOT NULL,
    amount_cents        INTEGER NOT NULL DEFAULT 0,
    vendor              TEXT NOT NULL DEFAULT '',
    note                TEXT NOT NULL DEFAULT '',
    sku                 TEXT,
    type                TEXT NOT NULL DEFAULT 'standard' CHECK (type IN ('standard', 'mileage')),
    miles               INTEGER,
    rate_cents_per_mile INTEGER,
    calc_amount_cents   INTEGER,
    deductible          INTEGER NOT NULL DEFAULT 1 CHECK (deductible IN (0, 1)),
    created_at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS lots (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    note       TEXT NOT NULL DEFAULT '',
    status     TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS inventory_lots (
    inventory_id TEXT NOT NULL REFERENCES inventory(id),
    lot_id       TEXT NOT NULL REFERENCES lots(id),
    created_at   DATETIME NOT NULL,
    PRIMARY KEY (inventory_id, lot_id)
);

CREATE TABLE IF NOT EXISTS photos (
    id           TEXT PRIMARY KEY,
    inventory_id TEXT NOT NULL REFERENCES inventory(id),
    blob_key     TEXT NOT NULL,
    content_type TEXT NOT NULL,
    size_bytes   INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS idempotency_keys (
    scope        TEXT NOT NULL,
    key          TEXT NOT NULL,
    fingerprint  TEXT NOT NULL,
    state        TEXT NOT NULL DEFAULT 'pending' CHECK (state IN ('pending', 'done')),
    status       INTEGER NOT NULL DEFAULT 0,
    content_type TEXT NOT NULL DEFAULT '',
    body         BLOB,
    created_at   DATETIME NOT NULL,
    PRIMARY KEY (scope, key)
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
