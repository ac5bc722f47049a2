package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phoneman1224/ebay-resell-ui/internal/auth"
	"github.com/phoneman1224/ebay-resell-ui/internal/blob"
	"github.com/phoneman1224/ebay-resell-ui/internal/idempotency"
)

// Options configures the API router.
type Options struct {
	DB             *sql.DB
	Blobs          blob.Store
	Gate           *auth.Gate
	Idempotency    idempotency.Store
	AllowedOrigin  string
	MaxUploadBytes int64
}

// route is one entry of the API routing table.
type route struct {
	Method    string
	Pattern   string
	Protected bool
	Handler   http.HandlerFunc
}

func (rt route) String() string {
	return rt.Method + " " + rt.Pattern
}

func routes(opts Options) []route {
	health := &HealthHandler{DB: opts.DB, Gate: opts.Gate}
	inventory := &InventoryHandler{DB: opts.DB}
	sales := &SalesHandler{DB: opts.DB}
	expenses := &ExpensesHandler{DB: opts.DB}
	reports := &ReportsHandler{DB: opts.DB}
	lots := &LotsHandler{DB: opts.DB}
	photos := &PhotosHandler{DB: opts.DB, Blobs: opts.Blobs, MaxUploadBytes: opts.MaxUploadBytes}

	return []route{
		{http.MethodGet, "/api/health", false, health.Health},
		{http.MethodGet, "/api/debug/auth", false, health.DebugAuth},

		{http.MethodGet, "/api/inventory", false, inventory.List},
		{http.MethodPost, "/api/inventory", false, inventory.Create},
		{http.MethodPatch, "/api/inventory/{id}", true, inventory.Update},

		{http.MethodGet, "/api/sales", false, sales.List},
		{http.MethodPost, "/api/sales", false, sales.Create},

		{http.MethodGet, "/api/expenses", false, expenses.List},
		{http.MethodPost, "/api/expenses", false, expenses.Create},

		{http.MethodGet, "/api/reports/summary", false, reports.Summary},
		{http.MethodGet, "/api/reports/export", false, reports.Export},

		{http.MethodGet, "/api/lots", false, lots.List},
		{http.MethodPost, "/api/lots", false, lots.Create},
		{http.MethodPatch, "/api/lots/{id}", true, lots.Update},
		{http.MethodGet, "/api/lots/{id}/items", false, lots.ListItems},
		{http.MethodPost, "/api/lots/{id}/items", true, lots.AddItem},
		{http.MethodDelete, "/api/lots/{id}/items/{invId}", true, lots.RemoveItem},

		{http.MethodGet, "/api/inventory/{id}/photos", false, photos.List},
		{http.MethodPost, "/api/inventory/{id}/photos", true, photos.Upload},
		{http.MethodGet, "/api/photos/{id}", false, photos.Get},
		{http.MethodGet, "/api/photos/{id}/thumbnail", false, photos.Thumbnail},
	}
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	if opts.Gate == nil {
		opts.Gate = auth.NewGate("", "", false)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestIDHeader)
	r.Use(requestLogger)
	r.Use(corsMiddleware(opts.AllowedOrigin))
	r.Use(recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.GetHead)

	table := routes(opts)
	protect := requireOwner(opts.Gate)
	dedup := idempotent(opts.Idempotency)

	for _, rt := range table {
		var h http.Handler = rt.Handler
		if rt.Method != http.MethodGet {
			h = dedup(h)
		}
		if rt.Protected {
			h = protect(h)
		}
		r.Method(rt.Method, rt.Pattern, h)
	}

	notFound := routeNotFound(table)
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

// routeNotFound answers unmatched requests, including known paths with the
// wrong method, with the list of available routes.
func routeNotFound(table []route) http.HandlerFunc {
	names := make([]string, len(table))
	for i, rt := range table {
		names[i] = rt.String()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorEnvelope{Error: errorBody{
			Code:    "not_found",
			Message: "route not found",
			Routes:  names,
		}})
	}
}
