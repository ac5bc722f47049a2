package model

import "time"

// Sale records one completed order line.
type Sale struct {
	ID                     string    `json:"id"`
	Date                   string    `json:"date"`
	InventoryID            *string   `json:"inventory_id"`
	SKU                    string    `json:"sku"`
	Qty                    int64     `json:"qty"`
	SoldPriceCents         int64     `json:"sold_price_cents"`
	BuyerShippingCents     int64     `json:"buyer_shipping_cents"`
	PlatformFeesCents      int64     `json:"platform_fees_cents"`
	PromoFeeCents          int64     `json:"promo_fee_cents"`
	ShippingLabelCostCents int64     `json:"shipping_label_cost_cents"`
	OtherCostsCents        int64     `json:"other_costs_cents"`
	OrderRef               string    `json:"order_ref"`
	Note                   string    `json:"note"`
	CreatedAt              time.Time `json:"created_at"`
}

// CostsCents returns the sum of all seller-side costs of the sale.
func (s Sale) CostsCents() int64 {
	return s.PlatformFeesCents + s.PromoFeeCents + s.ShippingLabelCostCents + s.OtherCostsCents
}
