package store

import (
	"context"
	"database/sql"

	"github.com/phoneman1224/ebay-resell-ui/internal/model"
)

// Summary runs the three report queries and combines them. Empty bounds
// fall back to the widest range.
func Summary(ctx context.Context, db *sql.DB, from, to string) (model.Summary, error) {
	if from == "" {
		from = model.ReportFromDefault
	}
	if to == "" {
		to = model.ReportToDefault
	}

	byStatus, err := CountInventoryByStatus(ctx, db)
	if err != nil {
		return model.Summary{}, err
	}
	sales, err := SumSales(ctx, db, from, to)
	if err != nil {
		return model.Summary{}, err
	}
	expenses, err := SumExpenses(ctx, db, from, to)
	if err != nil {
		return model.Summary{}, err
	}
	return model.NewSummary(from, to, byStatus, sales, expenses), nil
}
