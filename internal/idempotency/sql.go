package idempotency

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLStore keeps keys in the idempotency_keys table.
type SQLStore struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLStore returns a store over db. A non-positive ttl uses DefaultTTL.
func NewSQLStore(db *sql.DB, ttl time.Duration) *SQLStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SQLStore{db: db, ttl: ttl}
}

const (
	statePending = "pending"
	stateDone    = "done"
)

// Begin implements Store.
func (s *SQLStore) Begin(ctx context.Context, scope, key, fingerprint string) (*Lease, error) {
	// Opportunistically drop expired keys.
	_, _ = s.db.ExecContext(ctx,
		`DELETE FROM idempotency_keys WHERE created_at < ?`, time.Now().UTC().Add(-s.ttl),
	)

	for attempt := 0; attempt < 2; attempt++ {
		result, err := s.db.ExecContext(ctx,
			`INSERT INTO idempotency_keys (scope, key, fingerprint, state, created_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (scope, key) DO NOTHING`,
			scope, key, fingerprint, statePending, time.Now().UTC(),
		)
		if err != nil {
			return nil, fmt.Errorf("reserving idempotency key: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 1 {
			return s.lease(scope, key), nil
		}

		var storedFingerprint, state, contentType string
		var status int
		var body []byte
		err = s.db.QueryRowContext(ctx,
			`SELECT fingerprint, state, status, content_type, body
			 FROM idempotency_keys WHERE scope = ? AND key = ?`,
			scope, key,
		).Scan(&storedFingerprint, &state, &status, &contentType, &body)
		if err == sql.ErrNoRows {
			// Released between the insert and the read; try again.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading idempotency key: %w", err)
		}

		if storedFingerprint != fingerprint {
			return nil, ErrKeyReused
		}
		if state != stateDone {
			return nil, ErrInProgress
		}
		return &Lease{Replay: &Response{Status: status, ContentType: contentType, Body: body}}, nil
	}
	return nil, ErrInProgress
}

func (s *SQLStore) lease(scope, key string) *Lease {
	return &Lease{
		complete: func(ctx context.Context, resp Response) error {
			_, err := s.db.ExecContext(ctx,
				`UPDATE idempotency_keys SET state = ?, status = ?, content_type = ?, body = ?
				 WHERE scope = ? AND key = ?`,
				stateDone, resp.Status, resp.ContentType, resp.Body, scope, key,
			)
			if err != nil {
				return fmt.Errorf("storing idempotent response: %w", err)
			}
			return nil
		},
		release: func(ctx context.Context) error {
			_, err := s.db.ExecContext(ctx,
				`DELETE FROM idempotency_keys WHERE scope = ? AND key = ? AND state = ?`,
				scope, key, statePending,
			)
			if err != nil {
				return fmt.Errorf("releasing idempotency key: %w", err)
			}
			return nil
		},
	}
}
