package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoneman1224/ebay-resell-ui/internal/idempotency"
)

func TestIdempotentReplay(t *testing.T) {
	srv := setupTestServer(t)
	key := uuid.NewString()
	payload := map[string]any{"sku": "I1", "title": "Lamp", "category": "home"}

	resp, first := do(t, request(t, http.MethodPost, srv.URL+"/api/inventory", payload, "Idempotency-Key", key))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(first))
	assert.Empty(t, resp.Header.Get(HeaderReplayed))

	resp, second := do(t, request(t, http.MethodPost, srv.URL+"/api/inventory", payload, "Idempotency-Key", key))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(second))
	assert.Equal(t, "true", resp.Header.Get(HeaderReplayed))
	assert.Equal(t, contentTypeJSON, resp.Header.Get("Content-Type"))
	assert.JSONEq(t, string(first), string(second))

	_, body := do(t, request(t, http.MethodGet, srv.URL+"/api/inventory", nil))
	assert.Len(t, decodeBody[[]map[string]any](t, body), 1)

	// Without a key the duplicate reaches the handler.
	resp, body = do(t, request(t, http.MethodPost, srv.URL+"/api/inventory", payload))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", errorCode(t, body))
}

func TestIdempotencyKeyReused(t *testing.T) {
	srv := setupTestServer(t)
	key := uuid.NewString()

	resp, body := do(t, request(t, http.MethodPost, srv.URL+"/api/lots", map[string]any{"title": "A"}, "Idempotency-Key", key))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = do(t, request(t, http.MethodPost, srv.URL+"/api/lots", map[string]any{"title": "B"}, "Idempotency-Key", key))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "idempotency_key_reused", errorCode(t, body))

	// The same key on another route is a separate scope.
	resp, body = do(t, request(t, http.MethodPost, srv.URL+"/api/expenses",
		map[string]any{"date": "2024-01-01", "category": "misc"}, "Idempotency-Key", key))
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
}

func TestIdempotentClientErrorIsReplayed(t *testing.T) {
	srv := setupTestServer(t)
	key := uuid.NewString()

	for i := 0; i < 2; i++ {
		resp, body := do(t, request(t, http.MethodPost, srv.URL+"/api/sales", map[string]any{"sku": "x"}, "Idempotency-Key", key))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "bad_request", errorCode(t, body))
		if i == 1 {
			assert.Equal(t, "true", resp.Header.Get(HeaderReplayed))
		}
	}
}

func TestIdempotentServerErrorReleasesKey(t *testing.T) {
	srv := setupTestServer(t)
	key := uuid.NewString()
	payload := map[string]any{"date": "2024-01-01", "sku": "E1", "order_ref": "o-1"}

	_, err := srv.DB.Exec(`ALTER TABLE sales RENAME TO sales_hidden`)
	require.NoError(t, err)
	resp, body := do(t, request(t, http.MethodPost, srv.URL+"/api/sales", payload, "Idempotency-Key", key))
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode, string(body))
	assert.Equal(t, "db_error", errorCode(t, body))

	_, err = srv.DB.Exec(`ALTER TABLE sales_hidden RENAME TO sales`)
	require.NoError(t, err)
	resp, body = do(t, request(t, http.MethodPost, srv.URL+"/api/sales", payload, "Idempotency-Key", key))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Empty(t, resp.Header.Get(HeaderReplayed))
}

func TestProtectedMutationRequiresKey(t *testing.T) {
	srv := setupTestServer(t)
	item := createInventory(t, srv, "K1")

	resp, body := do(t, request(t, http.MethodPatch, srv.URL+"/api/inventory/"+item["id"].(string),
		map[string]any{"status": "active"}, "Authorization", "Bearer "+testOwnerToken))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Idempotency-Key required", decodeBody[apiError](t, body).Error.Message)
}

func TestIdempotencyKeyInProgress(t *testing.T) {
	var dedup idempotency.Store
	srv := setupTestServer(t, func(o *Options) { dedup = o.Idempotency })
	key := uuid.NewString()
	body := `{"title":"Pending lot"}`

	// Hold the key as a concurrent request with the same body would.
	lease, err := dedup.Begin(context.Background(), "POST /api/lots", key,
		idempotency.Fingerprint(http.MethodPost, "/api/lots", []byte(body)))
	require.NoError(t, err)
	require.Nil(t, lease.Replay)

	resp, respBody := do(t, request(t, http.MethodPost, srv.URL+"/api/lots", body, "Idempotency-Key", key))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "idempotency_in_progress", errorCode(t, respBody))

	_, respBody = do(t, request(t, http.MethodGet, srv.URL+"/api/lots", nil))
	assert.JSONEq(t, `[]`, string(respBody))

	require.NoError(t, lease.Release(context.Background()))
	resp, respBody = do(t, request(t, http.MethodPost, srv.URL+"/api/lots", body, "Idempotency-Key", key))
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(respBody))
}
