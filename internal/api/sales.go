package api

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/phoneman1224/ebay-resell-ui/internal/model"
	"github.com/phoneman1224/ebay-resell-ui/internal/money"
	"github.com/phoneman1224/ebay-resell-ui/internal/store"
)

// SalesHandler handles sale endpoints.
type SalesHandler struct {
	DB *sql.DB
}

type createSaleRequest struct {
	Date                 string      `json:"date" validate:"required,datetime=2006-01-02"`
	SKU                  string      `json:"sku" validate:"required"`
	OrderRef             string      `json:"order_ref" validate:"required"`
	InventoryID          *string     `json:"inventory_id"`
	Qty                  money.Value `json:"qty"`
	SoldPriceUSD         money.Value `json:"sold_price_usd"`
	BuyerShippingUSD     money.Value `json:"buyer_shipping_usd"`
	PlatformFeesUSD      money.Value `json:"platform_fees_usd"`
	PromoFeeUSD          money.Value `json:"promo_fee_usd"`
	ShippingLabelCostUSD money.Value `json:"shipping_label_cost_usd"`
	OtherCostsUSD        money.Value `json:"other_costs_usd"`
	Note                 string      `json:"note"`
}

// List handles GET /api/sales.
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sales, err := store.ListSales(r.Context(), h.DB, q.Get("from"), q.Get("to"), store.ListLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

// Create handles POST /api/sales.
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if !readJSON(w, r, &req) {
		return
	}
	req.Date = strings.TrimSpace(req.Date)
	req.SKU = strings.TrimSpace(req.SKU)
	req.OrderRef = strings.TrimSpace(req.OrderRef)
	if !validRequest(w, &req, "date/sku/order_ref required") {
		return
	}

	ctx := r.Context()
	inventoryID := req.InventoryID
	if inventoryID != nil && strings.TrimSpace(*inventoryID) == "" {
		inventoryID = nil
	}
	if inventoryID == nil {
		id, err := store.FindInventoryIDBySKU(ctx, h.DB, req.SKU)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error", err.Error())
			return
		}
		inventoryID = id
	}

	sale, err := store.CreateSale(ctx, h.DB, model.Sale{
		Date:                   req.Date,
		InventoryID:            inventoryID,
		SKU:                    req.SKU,
		Qty:                    money.Count(req.Qty, 1, 1),
		SoldPriceCents:         money.Cents(req.SoldPriceUSD),
		BuyerShippingCents:     money.Cents(req.BuyerShippingUSD),
		PlatformFeesCents:      money.Cents(req.PlatformFeesUSD),
		PromoFeeCents:          money.Cents(req.PromoFeeUSD),
		ShippingLabelCostCents: money.Cents(req.ShippingLabelCostUSD),
		OtherCostsCents:        money.Cents(req.OtherCostsUSD),
		OrderRef:               req.OrderRef,
		Note:                   req.Note,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}
