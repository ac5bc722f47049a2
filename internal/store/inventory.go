package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/phoneman1224/ebay-resell-ui/internal/model"
)

// InventoryListLimit caps the number of rows returned by ListInventory.
const InventoryListLimit = 200

const inventoryColumns = `id, sku, title, category, status, cost_cents, quantity, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanInventory(s scanner, item *model.InventoryItem) error {
	return s.Scan(&item.ID, &item.SKU, &item.Title, &item.Category, &item.Status,
		&item.CostCents, &item.Quantity, &item.CreatedAt)
}

// CreateInventory inserts a new inventory item. ID and CreatedAt are
// assigned here. A duplicate SKU returns ErrDuplicateSKU.
func CreateInventory(ctx context.Context, db *sql.DB, item model.InventoryItem) (*model.InventoryItem, error) {
	item.ID = newID()
	item.CreatedAt = now()
	if item.Status == "" {
		item.Status = model.InventoryStatusStaged
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO inventory (id, sku, title, category, status, cost_cents, quantity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.SKU, item.Title, item.Category, item.Status, item.CostCents, item.Quantity, item.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateSKU
	}
	if err != nil {
		return nil, fmt.Errorf("creating inventory item: %w", err)
	}
	return &item, nil
}

// GetInventory returns an inventory item by ID, or nil if it doesn't exist.
func GetInventory(ctx context.Context, db *sql.DB, id string) (*model.InventoryItem, error) {
	item := &model.InventoryItem{}
	err := scanInventory(db.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory WHERE id = ?`, id,
	), item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory item: %w", err)
	}
	return item, nil
}

// FindInventoryIDBySKU returns the id of the item with exactly this SKU, or
// nil when there is none.
func FindInventoryIDBySKU(ctx context.Context, db *sql.DB, sku string) (*string, error) {
	var id string
	err := db.QueryRowContext(ctx,
		`SELECT id FROM inventory WHERE sku = ? LIMIT 1`, sku,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding inventory by sku: %w", err)
	}
	return &id, nil
}

// ListInventory returns the newest inventory items. A non-empty query
// matches SKU or title as a substring; a non-empty status filters exactly.
func ListInventory(ctx context.Context, db *sql.DB, query, status string) ([]model.InventoryItem, error) {
	var where []string
	var args []any
	if query = strings.TrimSpace(query); query != "" {
		where = append(where, `(sku LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(query) + "%"
		args = append(args, pattern, pattern)
	}
	if status != "" {
		where = append(where, `status = ?`)
		args = append(args, status)
	}

	q := `SELECT ` + inventoryColumns + ` FROM inventory`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC, rowid DESC LIMIT %d`, InventoryListLimit)

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	items := []model.InventoryItem{}
	for rows.Next() {
		var item model.InventoryItem
		if err := scanInventory(rows, &item); err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateInventory applies a partial update and returns the updated item.
// An unknown id returns ErrNotFound.
func UpdateInventory(ctx context.Context, db *sql.DB, id string, patch model.InventoryPatch) (*model.InventoryItem, error) {
	var sets []string
	var args []any
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *patch.Quantity)
	}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("updating inventory item: no fields")
	}

	args = append(args, id)
	result, err := db.ExecContext(ctx,
		`UPDATE inventory SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating inventory item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	item, err := GetInventory(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// CountInventoryByStatus returns the number of items per status.
func CountInventoryByStatus(ctx context.Context, db *sql.DB) (map[string]int64, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM inventory GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting inventory: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning inventory count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
