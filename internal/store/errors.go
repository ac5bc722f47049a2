package store

import (
	"errors"
	"strings"
)

// Store errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateSKU = errors.New("SKU already exists")
)

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE")
}
