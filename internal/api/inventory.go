package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phoneman1224/ebay-resell-ui/internal/model"
	"github.com/phoneman1224/ebay-resell-ui/internal/money"
	"github.com/phoneman1224/ebay-resell-ui/internal/store"
)

// InventoryHandler handles inventory endpoints.
type InventoryHandler struct {
	DB *sql.DB
}

type createInventoryRequest struct {
	SKU       string      `json:"sku" validate:"required"`
	Title     string      `json:"title" validate:"required"`
	Category  string      `json:"category" validate:"required"`
	CostUSD   money.Value `json:"cost_usd"`
	CostCents money.Value `json:"cost_cents"`
	Quantity  money.Value `json:"quantity"`
	Status    string      `json:"status"`
}

type updateInventoryRequest struct {
	Status   *string     `json:"status"`
	Quantity money.Value `json:"quantity"`
	Title    *string     `json:"title"`
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := store.ListInventory(r.Context(), h.DB, q.Get("q"), q.Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /api/inventory.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInventoryRequest
	if !readJSON(w, r, &req) {
		return
	}
	req.SKU = strings.TrimSpace(req.SKU)
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	if !validRequest(w, &req, "sku/title/category required") {
		return
	}

	costCents := money.Cents(req.CostUSD)
	if !req.CostUSD.Present() {
		costCents = money.Count(req.CostCents, 0, 0)
	}
	status := strings.TrimSpace(req.Status)
	if !model.ValidInventoryStatus(status) {
		status = model.InventoryStatusStaged
	}

	item, err := store.CreateInventory(r.Context(), h.DB, model.InventoryItem{
		SKU:       req.SKU,
		Title:     req.Title,
		Category:  req.Category,
		Status:    status,
		CostCents: costCents,
		Quantity:  money.Count(req.Quantity, 1, 0),
	})
	if errors.Is(err, store.ErrDuplicateSKU) {
		writeError(w, http.StatusConflict, "conflict", "SKU already exists")
		return
	}
	if err != nil {
		writeErrorDetails(w, http.StatusConflict, "insert_failed", "could not create inventory item", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Update handles PATCH /api/inventory/{id}.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateInventoryRequest
	if !readJSON(w, r, &req) {
		return
	}

	var patch model.InventoryPatch
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if !model.ValidInventoryStatus(status) {
			writeErrorDetails(w, http.StatusBadRequest, "bad_request", "invalid status",
				map[string]any{"allowed": model.InventoryStatuses})
			return
		}
		patch.Status = &status
	}
	patch.Quantity = money.CountOrNil(req.Quantity, 0)
	if req.Title != nil {
		if title := strings.TrimSpace(*req.Title); title != "" {
			patch.Title = &title
		}
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "no_fields", "no updatable fields supplied")
		return
	}

	item, err := store.UpdateInventory(r.Context(), h.DB, chi.URLParam(r, "id"), patch)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "inventory item not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, item)
}
