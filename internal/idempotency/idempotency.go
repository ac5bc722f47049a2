// Package idempotency deduplicates retried mutating requests that carry an
// Idempotency-Key header.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// DefaultTTL is how long a completed response stays replayable.
const DefaultTTL = 24 * time.Hour

// Errors returned by Begin.
var (
	ErrInProgress = errors.New("a request with this idempotency key is still in progress")
	ErrKeyReused  = errors.New("idempotency key was already used for a different request")
)

// Response is a stored handler response.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Store reserves idempotency keys and remembers their responses.
type Store interface {
	// Begin reserves key within scope. If the key already completed with
	// the same fingerprint, the returned lease carries the stored response
	// in Replay and nothing else needs to be done with it.
	Begin(ctx context.Context, scope, key, fingerprint string) (*Lease, error)
}

// Lease is a reservation of one key. Exactly one of Complete or Release
// should be called unless Replay is set.
type Lease struct {
	Replay *Response

	complete func(ctx context.Context, resp Response) error
	release  func(ctx context.Context) error
}

// Complete stores resp for future replays.
func (l *Lease) Complete(ctx context.Context, resp Response) error {
	if l.complete == nil {
		return nil
	}
	return l.complete(ctx, resp)
}

// Release drops the reservation so the key can be retried.
func (l *Lease) Release(ctx context.Context) error {
	if l.release == nil {
		return nil
	}
	return l.release(ctx)
}

// Fingerprint identifies a request by its method, path and body.
func Fingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
