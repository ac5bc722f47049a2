package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phoneman1224/ebay-resell-ui/internal/money"
)

// ErrAmountOutOfRange is returned when a derived amount exceeds
// money.MaxCents.
var ErrAmountOutOfRange = errors.New("amount out of range")

// Expense is a business cost not tied to a single sale.
type Expense struct {
	ID               string    `json:"id"`
	Date             string    `json:"date"`
	Category         string    `json:"category"`
	AmountCents      int64     `json:"amount_cents"`
	Vendor           string    `json:"vendor"`
	Note             string    `json:"note"`
	SKU              *string   `json:"sku"`
	Type             string    `json:"type"`
	Miles            *int64    `json:"miles"`
	RateCentsPerMile *int64    `json:"rate_cents_per_mile"`
	CalcAmountCents  *int64    `json:"calc_amount_cents"`
	Deductible       int       `json:"deductible"`
	CreatedAt        time.Time `json:"created_at"`
}

// Expense types.
const (
	ExpenseTypeStandard = "standard"
	ExpenseTypeMileage  = "mileage"
)

// MileageAmount derives the calculated amount of a mileage expense. It is
// nil unless the expense is a mileage expense with both miles and rate.
func MileageAmount(expenseType string, miles, rateCents *int64) (*int64, error) {
	if expenseType != ExpenseTypeMileage || miles == nil || rateCents == nil {
		return nil, nil
	}
	amount := decimal.NewFromInt(*miles).Mul(decimal.NewFromInt(*rateCents))
	if amount.Abs().GreaterThan(decimal.NewFromInt(money.MaxCents)) {
		return nil, ErrAmountOutOfRange
	}
	n := amount.IntPart()
	return &n, nil
}
