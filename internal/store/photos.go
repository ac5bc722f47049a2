package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phoneman1224/ebay-resell-ui/internal/model"
)

// CreatePhoto records photo metadata. The caller assigns the ID, since it
// is part of the blob key written before the row exists.
func CreatePhoto(ctx context.Context, db *sql.DB, p model.Photo) (*model.Photo, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt = now()

	_, err := db.ExecContext(ctx,
		`INSERT INTO photos (id, inventory_id, blob_key, content_type, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.InventoryID, p.BlobKey, p.ContentType, p.SizeBytes, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating photo: %w", err)
	}
	return &p, nil
}

// GetPhoto returns photo metadata by ID, or nil if it doesn't exist.
func GetPhoto(ctx context.Context, db *sql.DB, id string) (*model.Photo, error) {
	p := &model.Photo{}
	err := db.QueryRowContext(ctx,
		`SELECT id, inventory_id, blob_key, content_type, size_bytes, created_at
		 FROM photos WHERE id = ?`, id,
	).Scan(&p.ID, &p.InventoryID, &p.BlobKey, &p.ContentType, &p.SizeBytes, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting photo: %w", err)
	}
	return p, nil
}

// ListPhotos returns the photos of an inventory item, newest first.
func ListPhotos(ctx context.Context, db *sql.DB, inventoryID string) ([]model.Photo, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, inventory_id, blob_key, content_type, size_bytes, created_at
		 FROM photos WHERE inventory_id = ? ORDER BY created_at DESC, rowid DESC`,
		inventoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	defer rows.Close()

	photos := []model.Photo{}
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.ID, &p.InventoryID, &p.BlobKey, &p.ContentType, &p.SizeBytes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}
