package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: date range scans for the summary report and list filters.
	`CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date)`,

	// Migration 2: lookups by parent record.
	`CREATE INDEX IF NOT EXISTS idx_inventory_lots_lot ON inventory_lots(lot_id)`,
	`CREATE INDEX IF NOT EXISTS idx_photos_inventory ON photos(inventory_id)`,

	// Migration 3: expiry sweep of idempotency records.
	`CREATE INDEX IF NOT EXISTS idx_idempotency_created ON idempotency_keys(created_at)`,
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
