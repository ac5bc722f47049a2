package api

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phoneman1224/ebay-resell-ui/internal/blob"
	"github.com/phoneman1224/ebay-resell-ui/internal/imaging"
	"github.com/phoneman1224/ebay-resell-ui/internal/model"
	"github.com/phoneman1224/ebay-resell-ui/internal/store"
)

// PhotosHandler handles photo upload and download endpoints.
type PhotosHandler struct {
	DB             *sql.DB
	Blobs          blob.Store
	MaxUploadBytes int64
}

const photoCacheControl = "public, max-age=3600"

// List handles GET /api/inventory/{id}/photos.
func (h *PhotosHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := store.ListPhotos(r.Context(), h.DB, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

// Upload handles POST /api/inventory/{id}/photos. The file part is streamed
// straight into the blob store.
func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	inventoryID := chi.URLParam(r, "id")

	item, err := store.GetInventory(ctx, h.DB, inventoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "inventory_not_found", "inventory item not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "form_required", "multipart/form-data body required")
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			writeError(w, http.StatusBadRequest, "file_required", "file part required")
			return
		}
		if err != nil {
			uploadError(w, err, http.StatusBadRequest, "form_required")
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		photoID := uuid.NewString()
		key := blob.PhotoKey(inventoryID, photoID, part.FileName())
		contentType := part.Header.Get("Content-Type")
		if contentType == "" {
			contentType = blob.DefaultContentType
		}

		size, err := h.Blobs.Put(ctx, key, part, contentType)
		part.Close()
		if err != nil {
			uploadError(w, err, http.StatusInternalServerError, "blob_error")
			return
		}

		photo, err := store.CreatePhoto(ctx, h.DB, model.Photo{
			ID:          photoID,
			InventoryID: inventoryID,
			BlobKey:     key,
			ContentType: contentType,
			SizeBytes:   size,
		})
		if err != nil {
			if derr := h.Blobs.Delete(ctx, key); derr != nil {
				log.Warn().Err(derr).Str("key", key).Msg("removing orphaned photo blob")
			}
			writeError(w, http.StatusInternalServerError, "db_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{"id": photo.ID, "key": photo.BlobKey, "ok": true})
		return
	}
}

// uploadError maps a streaming failure. An oversized body is the client's
// fault regardless of where it surfaced.
func uploadError(w http.ResponseWriter, err error, status int, code string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusBadRequest, "bad_request",
			"upload exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
		return
	}
	writeError(w, status, code, err.Error())
}

// open looks up the photo record and opens its blob, writing the error
// response itself when either is missing.
func (h *PhotosHandler) open(w http.ResponseWriter, r *http.Request) (*model.Photo, *blob.Object, bool) {
	ctx := r.Context()
	photo, err := store.GetPhoto(ctx, h.DB, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return nil, nil, false
	}
	if photo == nil {
		writeError(w, http.StatusNotFound, "not_found", "photo not found")
		return nil, nil, false
	}

	obj, err := h.Blobs.Get(ctx, photo.BlobKey)
	if errors.Is(err, blob.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "photo data not found")
		return nil, nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "blob_error", err.Error())
		return nil, nil, false
	}
	return photo, obj, true
}

// Get handles GET /api/photos/{id}.
func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	photo, obj, ok := h.open(w, r)
	if !ok {
		return
	}
	defer obj.Body.Close()

	contentType := photo.ContentType
	if contentType == "" {
		contentType = obj.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", photoCacheControl)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		log.Warn().Err(err).Str("photo_id", photo.ID).Msg("streaming photo")
	}
}

// Thumbnail handles GET /api/photos/{id}/thumbnail?size=N.
func (h *PhotosHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	_, obj, ok := h.open(w, r)
	if !ok {
		return
	}
	defer obj.Body.Close()

	size := imaging.ParseSize(r.URL.Query().Get("size"))
	var buf bytes.Buffer
	if err := imaging.Thumbnail(&buf, obj.Body, size); err != nil {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", photoCacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
