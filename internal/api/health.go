package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/phoneman1224/ebay-resell-ui/internal/auth"
)

// HealthHandler handles liveness and auth debugging endpoints.
type HealthHandler struct {
	DB   *sql.DB
	Gate *auth.Gate
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "db_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "ts": time.Now().UnixMilli()})
}

// DebugAuth handles GET /api/debug/auth. It reports whether the supplied
// owner token matches without revealing anything else.
func (h *HealthHandler) DebugAuth(w http.ResponseWriter, r *http.Request) {
	ok := h.Gate.Authenticated(r.Header)
	status := http.StatusOK
	if !ok {
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, map[string]bool{"ok": ok})
}
