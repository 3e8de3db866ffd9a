// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the HTTP surface of the wrapper node.
package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/liqingnz/goat-locking-wrapper/api/validators"
	"github.com/liqingnz/goat-locking-wrapper/log"
	"github.com/liqingnz/goat-locking-wrapper/metrics"
	"github.com/liqingnz/goat-locking-wrapper/wrapper"
)

// Config tunes the assembled handler.
type Config struct {
	LogRequests bool
}

// New builds the API handler over the engine bundle. now supplies the
// timestamp used for allowance windows and cooldowns.
func New(w *wrapper.Wrapper, now func() uint64, cfg Config) http.Handler {
	router := mux.NewRouter()

	validators.New(w, now).Mount(router, "/validators")
	mountConfig(router, w)
	router.Path("/metrics").Methods(http.MethodGet).Name("GET /metrics").Handler(metrics.HTTPHandler())

	handler := serializeHandler(router, w)
	handler = handlers.CompressHandler(handler)
	handler = metricsHandler(handler)
	if cfg.LogRequests {
		handler = RequestLoggerHandler(handler, log.WithContext("pkg", "api"))
	}
	return handler
}

// serializeHandler funnels every request through the wrapper's lock.
// Each connection is served on its own goroutine, but the handlers
// mutate and commit one shared journaled state and the read paths see
// the live journal, so requests must not interleave.
func serializeHandler(h http.Handler, w *wrapper.Wrapper) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		w.Lock()
		defer w.Unlock()
		h.ServeHTTP(rw, r)
	})
}
