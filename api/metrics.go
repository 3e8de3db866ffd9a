// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/liqingnz/goat-locking-wrapper/metrics"
)

var (
	metricRequestCount = metrics.LazyLoadCounterVec(
		"api_request_count", []string{"path", "code", "method"})
	metricRequestDuration = metrics.LazyLoadHistogramVec(
		"api_duration_ms", []string{"path", "code", "method"}, metrics.BucketHTTPReqs)
)

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.statusCode = code
	s.ResponseWriter.WriteHeader(code)
}

// metricsHandler records a count and duration per request.
func metricsHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{w, http.StatusOK}
		h.ServeHTTP(rec, r)

		labels := map[string]string{
			"path":   strings.ReplaceAll(strings.TrimLeft(r.URL.Path, "/"), "/", "_"),
			"code":   strconv.Itoa(rec.statusCode),
			"method": r.Method,
		}
		metricRequestCount().AddWithLabel(1, labels)
		metricRequestDuration().ObserveWithLabels(time.Since(start).Milliseconds(), labels)
	})
}
