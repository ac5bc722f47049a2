package model

// Default report range bounds. Dates compare as YYYY-MM-DD strings.
const (
	ReportFromDefault = "0000-01-01"
	ReportToDefault   = "9999-12-31"
)

// SalesTotals are the summed sale columns in a date range.
type SalesTotals struct {
	GrossCents         int64
	BuyerShippingCents int64
	CostsCents         int64
	Units              int64
}

// ExpenseTotals are the summed expense columns in a date range.
type ExpenseTotals struct {
	AmountCents  int64
	MileageCents int64
}

// Summary is the financial summary of a date range.
type Summary struct {
	InventoryByStatus  map[string]int64 `json:"inventory_by_status"`
	RevenueCents       int64            `json:"revenue_cents"`
	TotalExpensesCents int64            `json:"total_expenses_cents"`
	NetCents           int64            `json:"net_cents"`
	GrossSalesCents    int64            `json:"gross_sales_cents"`
	BuyerShippingCents int64            `json:"buyer_shipping_cents"`
	SalesCostsCents    int64            `json:"sales_costs_cents"`
	ExpenseCents       int64            `json:"expense_cents"`
	MileageCents       int64            `json:"mileage_cents"`
	UnitsSold          int64            `json:"units_sold"`
	From               string           `json:"from"`
	To                 string           `json:"to"`
}

// NewSummary combines the per-table totals. Revenue is gross plus buyer
// shipping; total expenses are sale costs plus expenses plus mileage.
func NewSummary(from, to string, byStatus map[string]int64, sales SalesTotals, expenses ExpenseTotals) Summary {
	if byStatus == nil {
		byStatus = map[string]int64{}
	}
	revenue := sales.GrossCents + sales.BuyerShippingCents
	total := sales.CostsCents + expenses.AmountCents + expenses.MileageCents
	return Summary{
		InventoryByStatus:  byStatus,
		RevenueCents:       revenue,
		TotalExpensesCents: total,
		NetCents:           revenue - total,
		GrossSalesCents:    sales.GrossCents,
		BuyerShippingCents: sales.BuyerShippingCents,
		SalesCostsCents:    sales.CostsCents,
		ExpenseCents:       expenses.AmountCents,
		MileageCents:       expenses.MileageCents,
		UnitsSold:          sales.Units,
		From:               from,
		To:                 to,
	}
}
