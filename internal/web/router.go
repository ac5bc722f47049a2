// Package web serves the embedded single-page UI and its service worker.
package web

import (
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"

	webembed "github.com/phoneman1224/ebay-resell-ui/web"
)

// NewRouter creates the router for the UI shell, static assets and the
// service worker.
func NewRouter() http.Handler {
	static := webembed.StaticFS()

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	mux.HandleFunc("GET /sw.js", serveFile(static, "sw.js", "text/javascript; charset=utf-8", func(h http.Header) {
		h.Set("Service-Worker-Allowed", "/")
		h.Set("Cache-Control", "no-cache")
	}))
	mux.HandleFunc("GET /{$}", serveFile(static, "index.html", "text/html; charset=utf-8", func(h http.Header) {
		h.Set("Cache-Control", "no-cache")
	}))
	return mux
}

// serveFile writes one embedded file with the given content type.
func serveFile(static fs.FS, name, contentType string, headers func(http.Header)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(static, name)
		if err != nil {
			log.Error().Err(err).Str("file", name).Msg("reading embedded file")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if headers != nil {
			headers(w.Header())
		}
		if _, err := w.Write(data); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("writing embedded file")
		}
	}
}
