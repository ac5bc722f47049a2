package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phoneman1224/ebay-resell-ui/internal/model"
)

const expenseColumns = `id, date, category, amount_cents, vendor, note, sku, type, miles,
	rate_cents_per_mile, calc_amount_cents, deductible, created_at`

// CreateExpense inserts an expense. ID and CreatedAt are assigned here.
func CreateExpense(ctx context.Context, db *sql.DB, e model.Expense) (*model.Expense, error) {
	e.ID = newID()
	e.CreatedAt = now()
	if e.Type == "" {
		e.Type = model.ExpenseTypeStandard
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.Category, e.AmountCents, e.Vendor, e.Note, nullableString(e.SKU), e.Type,
		nullableInt(e.Miles), nullableInt(e.RateCentsPerMile), nullableInt(e.CalcAmountCents),
		e.Deductible, e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating expense: %w", err)
	}
	return &e, nil
}

// ListExpenses returns up to limit expenses dated within [from, to],
// newest first. A negative limit returns every row.
func ListExpenses(ctx context.Context, db *sql.DB, from, to string, limit int) ([]model.Expense, error) {
	where, args := dateRange(from, to)
	rows, err := db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses`+where+` ORDER BY date DESC, created_at DESC LIMIT ?`,
		append(args, limit)...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	expenses := []model.Expense{}
	for rows.Next() {
		var e model.Expense
		var sku sql.NullString
		var miles, rate, calc sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Date, &e.Category, &e.AmountCents, &e.Vendor, &e.Note,
			&sku, &e.Type, &miles, &rate, &calc, &e.Deductible, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		if sku.Valid {
			e.SKU = &sku.String
		}
		e.Miles = int64Ptr(miles)
		e.RateCentsPerMile = int64Ptr(rate)
		e.CalcAmountCents = int64Ptr(calc)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// SumExpenses totals the expenses dated within [from, to].
func SumExpenses(ctx context.Context, db *sql.DB, from, to string) (model.ExpenseTotals, error) {
	var t model.ExpenseTotals
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COALESCE(SUM(calc_amount_cents), 0)
		 FROM expenses WHERE date >= ? AND date <= ?`,
		from, to,
	).Scan(&t.AmountCents, &t.MileageCents)
	if err != nil {
		return t, fmt.Errorf("summing expenses: %w", err)
	}
	return t, nil
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}
