package model

import "time"

// Photo is the metadata of an inventory photo. The bytes live in the blob
// store under BlobKey.
type Photo struct {
	ID          string    `json:"id"`
	InventoryID string    `json:"inventory_id"`
	BlobKey     string    `json:"blob_key"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
