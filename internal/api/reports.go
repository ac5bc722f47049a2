package api

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/phoneman1224/ebay-resell-ui/internal/model"
	"github.com/phoneman1224/ebay-resell-ui/internal/money"
	"github.com/phoneman1224/ebay-resell-ui/internal/store"
)

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	DB *sql.DB
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Summary handles GET /api/reports/summary.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := store.Summary(r.Context(), h.DB, q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Export handles GET /api/reports/export. It returns an xlsx workbook with
// the summary, every sale and every expense in the range.
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	summary, err := store.Summary(ctx, h.DB, q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	sales, err := store.ListSales(ctx, h.DB, summary.From, summary.To, -1)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	expenses, err := store.ListExpenses(ctx, h.DB, summary.From, summary.To, -1)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	f, err := buildWorkbook(summary, sales, expenses)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="resell-report_%s_%s.xlsx"`, summary.From, summary.To))
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		log.Warn().Err(err).Msg("writing report workbook")
	}
}

// Sheet names of the exported workbook.
const (
	sheetSummary  = "Summary"
	sheetSales    = "Sales"
	sheetExpenses = "Expenses"
)

func buildWorkbook(s model.Summary, sales []model.Sale, expenses []model.Expense) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming summary sheet: %w", err)
	}

	summaryRows := [][]any{
		{"From", s.From},
		{"To", s.To},
		{"Revenue (USD)", usd(s.RevenueCents)},
		{"Total expenses (USD)", usd(s.TotalExpensesCents)},
		{"Net (USD)", usd(s.NetCents)},
		{"Gross sales (USD)", usd(s.GrossSalesCents)},
		{"Buyer shipping (USD)", usd(s.BuyerShippingCents)},
		{"Sales costs (USD)", usd(s.SalesCostsCents)},
		{"Expenses (USD)", usd(s.ExpenseCents)},
		{"Mileage (USD)", usd(s.MileageCents)},
		{"Units sold", s.UnitsSold},
	}
	for _, status := range model.InventoryStatuses {
		summaryRows = append(summaryRows, []any{"Inventory " + status, s.InventoryByStatus[status]})
	}
	if err := writeRows(f, sheetSummary, []string{"Metric", "Value"}, summaryRows); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(sheetSales); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sales sheet: %w", err)
	}
	saleRows := make([][]any, 0, len(sales))
	for _, sale := range sales {
		saleRows = append(saleRows, []any{
			sale.Date, sale.SKU, sale.Qty, sale.OrderRef,
			usd(sale.SoldPriceCents), usd(sale.BuyerShippingCents),
			usd(sale.PlatformFeesCents), usd(sale.PromoFeeCents),
			usd(sale.ShippingLabelCostCents), usd(sale.OtherCostsCents),
			sale.Note,
		})
	}
	if err := writeRows(f, sheetSales, []string{
		"Date", "SKU", "Qty", "Order", "Sold price", "Buyer shipping",
		"Platform fees", "Promo fee", "Shipping label", "Other costs", "Note",
	}, saleRows); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(sheetExpenses); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating expenses sheet: %w", err)
	}
	expenseRows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		var calc any
		if e.CalcAmountCents != nil {
			calc = usd(*e.CalcAmountCents)
		}
		var miles any
		if e.Miles != nil {
			miles = *e.Miles
		}
		expenseRows = append(expenseRows, []any{
			e.Date, e.Category, e.Type, usd(e.AmountCents), miles, calc,
			e.Vendor, e.Deductible == 1, e.Note,
		})
	}
	if err := writeRows(f, sheetExpenses, []string{
		"Date", "Category", "Type", "Amount", "Miles", "Mileage amount", "Vendor", "Deductible", "Note",
	}, expenseRows); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// usd converts cents to a spreadsheet number.
func usd(cents int64) float64 {
	return money.ToUSD(cents).InexactFloat64()
}

func writeRows(f *excelize.File, sheet string, header []string, rows [][]any) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
