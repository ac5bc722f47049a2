package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createLot(t *testing.T, srv *testServer, title string) map[string]any {
	t.Helper()
	resp, body := do(t, request(t, http.MethodPost, srv.URL+"/api/lots", map[string]any{"title": title}))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decodeBody[map[string]any](t, body)
}

func TestCreateAndUpdateLot(t *testing.T) {
	srv := setupTestServer(t)

	resp, body := do(t, request(t, http.MethodPost, srv.URL+"/api/lots", map[string]any{"title": "  "}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "title required", decodeBody[apiError](t, body).Error.Message)

	lot := createLot(t, srv, "Estate sale")
	assert.Equal(t, "open", lot["status"])
	lotURL := srv.URL + "/api/lots/" + lot["id"].(string)

	resp, _ = do(t, request(t, http.MethodPatch, lotURL, map[string]any{"status": "closed"}))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = do(t, request(t, http.MethodPatch, lotURL, map[string]any{"status": "archived"}, ownerHeaders()...))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decodeBody[apiError](t, body)
	assert.Equal(t, "invalid status", e.Error.Message)
	assert.Equal(t, []any{"open", "closed"}, e.Error.Details["allowed"])

	resp, body = do(t, request(t, http.MethodPatch, lotURL, map[string]any{"title": ""}, ownerHeaders()...))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "no_fields", errorCode(t, body))

	resp, body = do(t, request(t, http.MethodPatch, lotURL, map[string]any{"status": "closed", "note": "done"}, ownerHeaders()...))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	updated := decodeBody[map[string]any](t, body)
	assert.Equal(t, "closed", updated["status"])
	assert.Equal(t, "done", updated["note"])
	assert.Equal(t, "Estate sale", updated["title"])

	resp, body = do(t, request(t, http.MethodPatch, srv.URL+"/api/lots/missing", map[string]any{"note": "x"}, ownerHeaders()...))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errorCode(t, body))

	_, body = do(t, request(t, http.MethodGet, srv.URL+"/api/lots", nil))
	assert.Len(t, decodeBody[[]map[string]any](t, body), 1)
}

func TestLotItems(t *testing.T) {
	srv := setupTestServer(t)
	item := createInventory(t, srv, "L1")
	lot := createLot(t, srv, "Box")
	itemsURL := srv.URL + "/api/lots/" + lot["id"].(string) + "/items"

	resp, body := do(t, request(t, http.MethodPost, itemsURL, map[string]any{"sku": "NOPE"}, ownerHeaders()...))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "inventory_not_found", errorCode(t, body))

	resp, body = do(t, request(t, http.MethodPost, srv.URL+"/api/lots/missing/items", map[string]any{"sku": "L1"}, ownerHeaders()...))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "lot_not_found", errorCode(t, body))

	// Linking twice is a no-op.
	for range 2 {
		resp, body = do(t, request(t, http.MethodPost, itemsURL, map[string]any{"sku": "L1"}, ownerHeaders()...))
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		got := decodeBody[map[string]any](t, body)
		assert.Equal(t, true, got["ok"])
		assert.Equal(t, item["id"], got["inventory_id"])
	}

	_, body = do(t, request(t, http.MethodGet, itemsURL, nil))
	items := decodeBody[[]map[string]any](t, body)
	require.Len(t, items, 1)
	assert.Equal(t, "L1", items[0]["sku"])
	assert.NotEmpty(t, items[0]["linked_at"])

	_, body = do(t, request(t, http.MethodGet, srv.URL+"/api/lots/missing/items", nil))
	assert.JSONEq(t, `[]`, string(body))

	unlink := itemsURL + "/" + item["id"].(string)
	resp, body = do(t, request(t, http.MethodDelete, unlink, nil, ownerHeaders()...))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"ok":true}`, string(body))

	resp, body = do(t, request(t, http.MethodDelete, unlink, nil, ownerHeaders()...))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errorCode(t, body))
}
