package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/phoneman1224/ebay-resell-ui/internal/model"
)

// LotItemsLimit caps the number of items returned by ListLotItems.
const LotItemsLimit = 500

// CreateLot inserts a lot. ID and CreatedAt are assigned here.
func CreateLot(ctx context.Context, db *sql.DB, lot model.Lot) (*model.Lot, error) {
	lot.ID = newID()
	lot.CreatedAt = now()
	if lot.Status == "" {
		lot.Status = model.LotStatusOpen
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO lots (id, title, note, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		lot.ID, lot.Title, lot.Note, lot.Status, lot.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating lot: %w", err)
	}
	return &lot, nil
}

// GetLot returns a lot by ID, or nil if it doesn't exist.
func GetLot(ctx context.Context, db *sql.DB, id string) (*model.Lot, error) {
	lot := &model.Lot{}
	err := db.QueryRowContext(ctx,
		`SELECT id, title, note, status, created_at FROM lots WHERE id = ?`, id,
	).Scan(&lot.ID, &lot.Title, &lot.Note, &lot.Status, &lot.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting lot: %w", err)
	}
	return lot, nil
}

// ListLots returns the newest lots.
func ListLots(ctx context.Context, db *sql.DB) ([]model.Lot, error) {
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, title, note, status, created_at FROM lots
		 ORDER BY created_at DESC, rowid DESC LIMIT %d`, ListLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("listing lots: %w", err)
	}
	defer rows.Close()

	lots := []model.Lot{}
	for rows.Next() {
		var lot model.Lot
		if err := rows.Scan(&lot.ID, &lot.Title, &lot.Note, &lot.Status, &lot.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning lot: %w", err)
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

// UpdateLot applies a partial update and returns the updated lot. An
// unknown id returns ErrNotFound.
func UpdateLot(ctx context.Context, db *sql.DB, id string, patch model.LotPatch) (*model.Lot, error) {
	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Note != nil {
		sets = append(sets, "note = ?")
		args = append(args, *patch.Note)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("updating lot: no fields")
	}

	args = append(args, id)
	result, err := db.ExecContext(ctx,
		`UPDATE lots SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating lot: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	lot, err := GetLot(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, ErrNotFound
	}
	return lot, nil
}

// AddLotItem links an inventory item to a lot. Linking an already linked
// pair leaves the existing link untouched.
func AddLotItem(ctx context.Context, db *sql.DB, lotID, inventoryID string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO inventory_lots (inventory_id, lot_id, created_at) VALUES (?, ?, ?)`,
		inventoryID, lotID, now(),
	)
	if err != nil {
		return fmt.Errorf("linking lot item: %w", err)
	}
	return nil
}

// RemoveLotItem deletes a link. A missing link returns ErrNotFound.
func RemoveLotItem(ctx context.Context, db *sql.DB, lotID, inventoryID string) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM inventory_lots WHERE lot_id = ? AND inventory_id = ?`,
		lotID, inventoryID,
	)
	if err != nil {
		return fmt.Errorf("unlinking lot item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLotItems returns the inventory items linked to a lot, newest item first.
func ListLotItems(ctx context.Context, db *sql.DB, lotID string) ([]model.LotItem, error) {
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT i.id, i.sku, i.title, i.category, i.status, i.cost_cents, i.quantity, i.created_at, il.created_at
		 FROM inventory_lots il
		 JOIN inventory i ON i.id = il.inventory_id
		 WHERE il.lot_id = ?
		 ORDER BY i.created_at DESC, i.rowid DESC
		 LIMIT %d`, LotItemsLimit),
		lotID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing lot items: %w", err)
	}
	defer rows.Close()

	items := []model.LotItem{}
	for rows.Next() {
		var it model.LotItem
		if err := rows.Scan(&it.ID, &it.SKU, &it.Title, &it.Category, &it.Status,
			&it.CostCents, &it.Quantity, &it.CreatedAt, &it.LinkedAt); err != nil {
			return nil, fmt.Errorf("scanning lot item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
