package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phoneman1224/ebay-resell-ui/internal/model"
	"github.com/phoneman1224/ebay-resell-ui/internal/store"
)

// LotsHandler handles lot and lot membership endpoints.
type LotsHandler struct {
	DB *sql.DB
}

type createLotRequest struct {
	Title  string `json:"title" validate:"required"`
	Note   string `json:"note"`
	Status string `json:"status" validate:"omitempty,oneof=open closed"`
}

type updateLotRequest struct {
	Title  *string `json:"title"`
	Note   *string `json:"note"`
	Status *string `json:"status"`
}

type addLotItemRequest struct {
	SKU string `json:"sku" validate:"required"`
}

// List handles GET /api/lots.
func (h *LotsHandler) List(w http.ResponseWriter, r *http.Request) {
	lots, err := store.ListLots(r.Context(), h.DB)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lots)
}

// Create handles POST /api/lots.
func (h *LotsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLotRequest
	if !readJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Status = strings.TrimSpace(req.Status)
	if !validRequest(w, &req, "title required") {
		return
	}

	lot, err := store.CreateLot(r.Context(), h.DB, model.Lot{
		Title:  req.Title,
		Note:   req.Note,
		Status: req.Status,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, lot)
}

// Update handles PATCH /api/lots/{id}.
func (h *LotsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateLotRequest
	if !readJSON(w, r, &req) {
		return
	}

	var patch model.LotPatch
	if req.Title != nil {
		if title := strings.TrimSpace(*req.Title); title != "" {
			patch.Title = &title
		}
	}
	patch.Note = req.Note
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if !model.ValidLotStatus(status) {
			writeErrorDetails(w, http.StatusBadRequest, "bad_request", "invalid status",
				map[string]any{"allowed": []string{model.LotStatusOpen, model.LotStatusClosed}})
			return
		}
		patch.Status = &status
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "no_fields", "no updatable fields supplied")
		return
	}

	lot, err := store.UpdateLot(r.Context(), h.DB, chi.URLParam(r, "id"), patch)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "lot not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lot)
}

// ListItems handles GET /api/lots/{id}/items.
func (h *LotsHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListLotItems(r.Context(), h.DB, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// AddItem handles POST /api/lots/{id}/items.
func (h *LotsHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addLotItemRequest
	if !readJSON(w, r, &req) {
		return
	}
	req.SKU = strings.TrimSpace(req.SKU)
	if !validRequest(w, &req, "sku required") {
		return
	}

	ctx := r.Context()
	lotID := chi.URLParam(r, "id")
	lot, err := store.GetLot(ctx, h.DB, lotID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if lot == nil {
		writeError(w, http.StatusNotFound, "lot_not_found", "lot not found")
		return
	}

	inventoryID, err := store.FindInventoryIDBySKU(ctx, h.DB, req.SKU)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if inventoryID == nil {
		writeError(w, http.StatusNotFound, "inventory_not_found", "no inventory item with that SKU")
		return
	}

	if err := store.AddLotItem(ctx, h.DB, lot.ID, *inventoryID); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"ok":           true,
		"inventory_id": *inventoryID,
		"lot_id":       lot.ID,
	})
}

// RemoveItem handles DELETE /api/lots/{id}/items/{invId}.
func (h *LotsHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	err := store.RemoveLotItem(r.Context(), h.DB, chi.URLParam(r, "id"), chi.URLParam(r, "invId"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "lot item link not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
