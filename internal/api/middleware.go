package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/phoneman1224/ebay-resell-ui/internal/auth"
	"github.com/phoneman1224/ebay-resell-ui/internal/idempotency"
)

// CORS header values sent on every API response.
const (
	corsAllowMethods  = "GET,POST,PATCH,DELETE,OPTIONS"
	corsAllowHeaders  = "Content-Type,Authorization,Idempotency-Key,X-Owner-Token"
	corsExposeHeaders = "Idempotent-Replayed,X-Request-Id"
	corsMaxAge        = "86400"
)

// HeaderReplayed marks a response served from the idempotency store.
const HeaderReplayed = "Idempotent-Replayed"

// AllowOrigin returns the Access-Control-Allow-Origin value. A wildcard
// configuration echoes the request origin; anything else is sent verbatim.
func AllowOrigin(configured, requestOrigin string) string {
	if configured == "" || configured == "*" {
		if requestOrigin != "" {
			return requestOrigin
		}
		return "*"
	}
	return configured
}

// corsMiddleware sets the CORS headers and answers preflight requests.
func corsMiddleware(allowed string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", AllowOrigin(allowed, r.Header.Get("Origin")))
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestIDHeader echoes the request id assigned by middleware.RequestID.
func requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request with method, path, status, duration and
// response size.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := zerolog.InfoLevel
		if status >= http.StatusInternalServerError {
			level = zerolog.ErrorLevel
		}
		log.WithLevel(level).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Int("bytes", ww.BytesWritten()).
			Msg("request")
	})
}

// recoverer turns a panic into a 500 internal error. CORS headers are
// already set by the time it runs.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler {
				panic(rv)
			}
			log.Error().
				Str("request_id", middleware.GetReqID(r.Context())).
				Interface("panic", rv).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

// requireOwner runs the auth gate in front of a protected handler.
func requireOwner(gate *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := gate.Check(r.Header, r.Method); {
			case errors.Is(err, auth.ErrUnauthorized):
				writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			case errors.Is(err, auth.ErrIdempotencyKeyRequired):
				writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			case err != nil:
				writeError(w, http.StatusInternalServerError, "internal", err.Error())
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

// idempotent deduplicates retries of a mutating request that carries an
// Idempotency-Key. Requests without a key pass straight through.
func idempotent(store idempotency.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(auth.HeaderIdempotencyKey))
			if key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			path := strings.TrimRight(r.URL.Path, "/")
			var fingerprint string
			if isMultipart(r) {
				// Uploads are streamed, so they are identified by size only.
				fingerprint = idempotency.Fingerprint(r.Method, path, []byte(strconv.FormatInt(r.ContentLength, 10)))
			} else {
				body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
				r.Body.Close()
				if err != nil {
					writeError(w, http.StatusBadRequest, "bad_request", "request body too large or unreadable")
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				fingerprint = idempotency.Fingerprint(r.Method, path, body)
			}

			ctx := r.Context()
			lease, err := store.Begin(ctx, r.Method+" "+path, key, fingerprint)
			switch {
			case errors.Is(err, idempotency.ErrInProgress):
				writeError(w, http.StatusConflict, "idempotency_in_progress", err.Error())
				return
			case errors.Is(err, idempotency.ErrKeyReused):
				writeError(w, http.StatusConflict, "idempotency_key_reused", err.Error())
				return
			case err != nil:
				writeError(w, http.StatusInternalServerError, "internal", err.Error())
				return
			}

			if replay := lease.Replay; replay != nil {
				if replay.ContentType != "" {
					w.Header().Set("Content-Type", replay.ContentType)
				}
				w.Header().Set(HeaderReplayed, "true")
				w.WriteHeader(replay.Status)
				w.Write(replay.Body)
				return
			}

			var buf bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&buf)

			completed := false
			defer func() {
				if !completed {
					// The handler panicked; let the client retry.
					if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
						log.Warn().Err(err).Msg("releasing idempotency key")
					}
				}
			}()

			next.ServeHTTP(ww, r)
			completed = true

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
					log.Warn().Err(err).Msg("releasing idempotency key")
				}
				return
			}
			resp := idempotency.Response{
				Status:      status,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        buf.Bytes(),
			}
			if err := lease.Complete(context.WithoutCancel(ctx), resp); err != nil {
				log.Warn().Err(err).Msg("storing idempotent response")
			}
		})
	}
}
