package store

import (
	"time"

	"github.com/google/uuid"
)

// newID returns a random record id.
func newID() string {
	return uuid.NewString()
}

// now returns the creation timestamp for new rows.
func now() time.Time {
	return time.Now().UTC()
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}
