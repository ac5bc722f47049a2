package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/phoneman1224/ebay-resell-ui/internal/model"
	"github.com/phoneman1224/ebay-resell-ui/internal/money"
	"github.com/phoneman1224/ebay-resell-ui/internal/store"
)

// ExpensesHandler handles expense endpoints.
type ExpensesHandler struct {
	DB *sql.DB
}

type createExpenseRequest struct {
	Date           string          `json:"date" validate:"required,datetime=2006-01-02"`
	Category       string          `json:"category" validate:"required"`
	Type           string          `json:"type" validate:"omitempty,oneof=standard mileage"`
	AmountUSD      money.Value     `json:"amount_usd"`
	Vendor         string          `json:"vendor"`
	Note           string          `json:"note"`
	SKU            *string         `json:"sku"`
	Miles          money.Value     `json:"miles"`
	RateUSDPerMile money.Value     `json:"rate_usd_per_mile"`
	Deductible     json.RawMessage `json:"deductible"`
}

// deductibleFlag maps the deductible input to 0 or 1. Only an explicit 0
// (number or string) clears the flag.
func deductibleFlag(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 1
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "0" {
			return 0
		}
		return 1
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if f, err := n.Float64(); err == nil && f == 0 {
			return 0
		}
	}
	return 1
}

// List handles GET /api/expenses.
func (h *ExpensesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expenses, err := store.ListExpenses(r.Context(), h.DB, q.Get("from"), q.Get("to"), store.ListLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// Create handles POST /api/expenses.
func (h *ExpensesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if !readJSON(w, r, &req) {
		return
	}
	req.Date = strings.TrimSpace(req.Date)
	req.Category = strings.TrimSpace(req.Category)
	req.Type = strings.TrimSpace(req.Type)
	if !validRequest(w, &req, "date/category required") {
		return
	}
	if req.Type == "" {
		req.Type = model.ExpenseTypeStandard
	}

	sku := req.SKU
	if sku != nil {
		if trimmed := strings.TrimSpace(*sku); trimmed != "" {
			sku = &trimmed
		} else {
			sku = nil
		}
	}

	miles := money.CountOrNil(req.Miles, 0)
	rate := money.CentsOrNil(req.RateUSDPerMile)
	calc, err := model.MileageAmount(req.Type, miles, rate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "mileage amount out of range")
		return
	}

	expense, err := store.CreateExpense(r.Context(), h.DB, model.Expense{
		Date:             req.Date,
		Category:         req.Category,
		AmountCents:      money.Cents(req.AmountUSD),
		Vendor:           req.Vendor,
		Note:             req.Note,
		SKU:              sku,
		Type:             req.Type,
		Miles:            miles,
		RateCentsPerMile: rate,
		CalcAmountCents:  calc,
		Deductible:       deductibleFlag(req.Deductible),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}
