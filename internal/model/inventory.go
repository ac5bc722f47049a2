package model

import "time"

// InventoryItem is a stock keeping unit held for resale.
type InventoryItem struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CostCents int64     `json:"cost_cents"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Inventory statuses.
const (
	InventoryStatusStaged = "staged"
	InventoryStatusDraft  = "draft"
	InventoryStatusActive = "active"
	InventoryStatusSold   = "sold"
)

// InventoryStatuses lists every valid inventory status in lifecycle order.
var InventoryStatuses = []string{
	InventoryStatusStaged,
	InventoryStatusDraft,
	InventoryStatusActive,
	InventoryStatusSold,
}

// ValidInventoryStatus checks if status is a known inventory status.
func ValidInventoryStatus(status string) bool {
	for _, s := range InventoryStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// InventoryPatch holds the fields of a partial inventory update. Nil fields
// are left unchanged.
type InventoryPatch struct {
	Status   *string
	Quantity *int64
	Title    *string
}

// Empty reports whether the patch changes nothing.
func (p InventoryPatch) Empty() bool {
	return p.Status == nil && p.Quantity == nil && p.Title == nil
}
