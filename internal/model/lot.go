package model

import "time"

// Lot groups inventory items bought together.
type Lot struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Note      string    `json:"note"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Lot statuses.
const (
	LotStatusOpen   = "open"
	LotStatusClosed = "closed"
)

// ValidLotStatus checks if status is a known lot status.
func ValidLotStatus(status string) bool {
	return status == LotStatusOpen || status == LotStatusClosed
}

// LotPatch holds the fields of a partial lot update.
type LotPatch struct {
	Title  *string
	Note   *string
	Status *string
}

// Empty reports whether the patch changes nothing.
func (p LotPatch) Empty() bool {
	return p.Title == nil && p.Note == nil && p.Status == nil
}

// LotItem is an inventory item as listed within a lot.
type LotItem struct {
	InventoryItem
	LinkedAt time.Time `json:"linked_at"`
}
