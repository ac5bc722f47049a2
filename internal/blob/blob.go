// Package blob stores photo bytes outside the relational database.
package blob

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("blob not found")

// DefaultContentType is used when an upload does not declare one.
const DefaultContentType = "application/octet-stream"

// Object is an open stored object. The caller must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store is a key/value store for large binary objects.
type Store interface {
	// Put streams r into key and returns the number of bytes written.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error)
	// Get opens the object stored under key.
	Get(ctx context.Context, key string) (*Object, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// PhotoKey builds the object key of an inventory photo.
func PhotoKey(inventoryID, photoID, filename string) string {
	return "inventory/" + inventoryID + "/" + photoID + "_" + SanitizeFilename(filename)
}

// SanitizeFilename replaces every character outside [A-Za-z0-9._-] with
// an underscore, one per UTF-16 code unit, so a character outside the
// basic plane becomes two. An empty name becomes "upload".
func SanitizeFilename(name string) string {
	if name == "" {
		return "upload"
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '_', c == '-':
			b.WriteRune(c)
		case c > 0xFFFF:
			b.WriteString("__")
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
