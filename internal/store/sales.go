package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phoneman1224/ebay-resell-ui/internal/model"
)

// ListLimit caps the number of sales, expenses and lots returned by a list.
const ListLimit = 200

const saleColumns = `id, date, inventory_id, sku, qty, sold_price_cents, buyer_shipping_cents,
	platform_fees_cents, promo_fee_cents, shipping_label_cost_cents, other_costs_cents,
	order_ref, note, created_at`

// CreateSale inserts a sale. ID and CreatedAt are assigned here.
func CreateSale(ctx context.Context, db *sql.DB, sale model.Sale) (*model.Sale, error) {
	sale.ID = newID()
	sale.CreatedAt = now()

	_, err := db.ExecContext(ctx,
		`INSERT INTO sales (`+saleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.Date, nullableString(sale.InventoryID), sale.SKU, sale.Qty,
		sale.SoldPriceCents, sale.BuyerShippingCents, sale.PlatformFeesCents, sale.PromoFeeCents,
		sale.ShippingLabelCostCents, sale.OtherCostsCents, sale.OrderRef, sale.Note, sale.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating sale: %w", err)
	}
	return &sale, nil
}

// ListSales returns up to limit sales dated within [from, to], newest
// first. Empty bounds are open; a negative limit returns every row.
func ListSales(ctx context.Context, db *sql.DB, from, to string, limit int) ([]model.Sale, error) {
	where, args := dateRange(from, to)
	rows, err := db.QueryContext(ctx,
		`SELECT `+saleColumns+` FROM sales`+where+` ORDER BY date DESC, created_at DESC LIMIT ?`,
		append(args, limit)...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	sales := []model.Sale{}
	for rows.Next() {
		var s model.Sale
		var inventoryID sql.NullString
		if err := rows.Scan(&s.ID, &s.Date, &inventoryID, &s.SKU, &s.Qty,
			&s.SoldPriceCents, &s.BuyerShippingCents, &s.PlatformFeesCents, &s.PromoFeeCents,
			&s.ShippingLabelCostCents, &s.OtherCostsCents, &s.OrderRef, &s.Note, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}
		if inventoryID.Valid {
			s.InventoryID = &inventoryID.String
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// SumSales totals the sales dated within [from, to].
func SumSales(ctx context.Context, db *sql.DB, from, to string) (model.SalesTotals, error) {
	var t model.SalesTotals
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(sold_price_cents), 0),
		        COALESCE(SUM(buyer_shipping_cents), 0),
		        COALESCE(SUM(platform_fees_cents + promo_fee_cents + shipping_label_cost_cents + other_costs_cents), 0),
		        COALESCE(SUM(qty), 0)
		 FROM sales WHERE date >= ? AND date <= ?`,
		from, to,
	).Scan(&t.GrossCents, &t.BuyerShippingCents, &t.CostsCents, &t.Units)
	if err != nil {
		return t, fmt.Errorf("summing sales: %w", err)
	}
	return t, nil
}

func dateRange(from, to string) (string, []any) {
	var where string
	var args []any
	if from != "" {
		where = ` WHERE date >= ?`
		args = append(args, from)
	}
	if to != "" {
		if where == "" {
			where = ` WHERE date <= ?`
		} else {
			where += ` AND date <= ?`
		}
		args = append(args, to)
	}
	return where, args
}
