package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoneman1224/ebay-resell-ui/internal/auth"
	"github.com/phoneman1224/ebay-resell-ui/internal/blob"
	"github.com/phoneman1224/ebay-resell-ui/internal/db"
	"github.com/phoneman1224/ebay-resell-ui/internal/idempotency"
)

const testOwnerToken = "test-owner-token"

type testServer struct {
	*httptest.Server
	DB    *sql.DB
	Blobs *blob.FS
}

func setupTestServer(t *testing.T, mutate ...func(*Options)) *testServer {
	t.Helper()
	database := db.NewTestDB(t)
	blobs, err := blob.NewFS(t.TempDir())
	require.NoError(t, err)

	opts := Options{
		DB:             database,
		Blobs:          blobs,
		Gate:           auth.NewGate(testOwnerToken, "", true),
		Idempotency:    idempotency.NewSQLStore(database, time.Hour),
		AllowedOrigin:  "*",
		MaxUploadBytes: 1 << 20,
	}
	for _, m := range mutate {
		m(&opts)
	}

	server := httptest.NewServer(NewRouter(opts))
	t.Cleanup(server.Close)
	return &testServer{Server: server, DB: database, Blobs: blobs}
}

// request builds a JSON request. Mutating owner requests get a bearer token
// and a fresh Idempotency-Key unless the caller overrides headers.
func request(t *testing.T, method, url string, body any, headers ...string) *http.Request {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewReader([]byte(b))
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(data)
		}
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return req
}

func ownerHeaders() []string {
	return []string{"Authorization", "Bearer " + testOwnerToken, "Idempotency-Key", uuid.NewString()}
}

func do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeBody[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), "body: %s", body)
	return v
}

type apiError struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
		Routes  []string       `json:"routes"`
	} `json:"error"`
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	return decodeBody[apiError](t, body).Error.Code
}

func createInventory(t *testing.T, srv *testServer, sku string) map[string]any {
	t.Helper()
	resp, body := do(t, request(t, http.MethodPost, srv.URL+"/api/inventory", map[string]any{
		"sku": sku, "title": "Item " + sku, "category": "misc", "cost_usd": 5,
	}))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decodeBody[map[string]any](t, body)
}

func TestHealth(t *testing.T) {
	srv := setupTestServer(t)

	resp, body := do(t, request(t, http.MethodGet, srv.URL+"/api/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, contentTypeJSON, resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	got := decodeBody[map[string]any](t, body)
	assert.Equal(t, true, got["ok"])
	assert.NotZero(t, got["ts"])
}

func TestHealthDatabaseDown(t *testing.T) {
	srv := setupTestServer(t)
	require.NoError(t, srv.DB.Close())

	resp, body := do(t, request(t, http.MethodGet, srv.URL+"/api/health", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "db_unavailable", errorCode(t, body))
}

func TestDebugAuth(t *testing.T) {
	srv := setupTestServer(t)

	resp, body := do(t, request(t, http.MethodGet, srv.URL+"/api/debug/auth", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"ok":false}`, string(body))

	resp, body = do(t, request(t, http.MethodGet, srv.URL+"/api/debug/auth", nil,
		"Authorization", "Bearer "+testOwnerToken))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestRouteNotFound(t *testing.T) {
	srv := setupTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/nope"},
		{http.MethodPut, "/api/inventory"},
		{http.MethodDelete, "/api/lots"},
	} {
		resp, body := do(t, request(t, tc.method, srv.URL+tc.path, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "%s %s", tc.method, tc.path)

		e := decodeBody[apiError](t, body)
		assert.Equal(t, "not_found", e.Error.Code)
		assert.Equal(t, "route not found", e.Error.Message)
		assert.Contains(t, e.Error.Routes, "GET /api/health")
		assert.Contains(t, e.Error.Routes, "DELETE /api/lots/{id}/items/{invId}")
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	}
}

func TestTrailingSlash(t *testing.T) {
	srv := setupTestServer(t)

	resp, _ := do(t, request(t, http.MethodGet, srv.URL+"/api/inventory/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHeadRoutesToGet(t *testing.T) {
	srv := setupTestServer(t)

	resp, _ := do(t, request(t, http.MethodHead, srv.URL+"/api/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
